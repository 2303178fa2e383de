package domain

import (
	"time"
)

// RevenueMetrics are the aggregate scalars shown on the dashboard
// overview. Pure function output of a deal collection.
type RevenueMetrics struct {
	TotalRevenue    float64 `json:"totalRevenue"`
	DealsWon        int     `json:"dealsWon"`
	PipelineValue   float64 `json:"pipelineValue"`
	AverageDealSize float64 `json:"averageDealSize"`
}

// ForecastPoint is one calendar bucket of the forecast time series.
// The four sums are independent re-filters of the same bucket: a deal
// can count in several of them. They model confidence tiers, not a
// partition.
type ForecastPoint struct {
	Period    string  `json:"period"`
	Committed float64 `json:"committed"`
	BestCase  float64 `json:"bestCase"`
	Pipeline  float64 `json:"pipeline"`
	Closed    float64 `json:"closed"`
}

// QuarterForecast is one quarter of the quarterly outlook series.
type QuarterForecast struct {
	Period    string  `json:"period"`
	Committed float64 `json:"committed"`
	BestCase  float64 `json:"bestCase"`
	Pipeline  float64 `json:"pipeline"`
	Actual    float64 `json:"actual"`
}

// AttainmentSeverity is the tri-level display severity derived from
// quota attainment thresholds.
type AttainmentSeverity string

const (
	SeverityHigh   AttainmentSeverity = "high"
	SeverityMedium AttainmentSeverity = "medium"
	SeverityLow    AttainmentSeverity = "low"
)

// QuarterOutlook summarizes the current quarter against quota.
type QuarterOutlook struct {
	Committed       float64            `json:"committed"`
	BestCase        float64            `json:"bestCase"`
	Pipeline        float64            `json:"pipeline"`
	ClosedWon       float64            `json:"closedWon"`
	QuotaAttainment float64            `json:"quotaAttainment"`
	Severity        AttainmentSeverity `json:"severity"`
	Quarters        []QuarterForecast  `json:"quarters"`
}

// StageSummary aggregates open pipeline per canonical stage.
type StageSummary struct {
	Stage       DealStage `json:"stage"`
	Name        string    `json:"name"`
	Probability int       `json:"probability"`
	Deals       int       `json:"deals"`
	Value       float64   `json:"value"`
}

// TeamMemberStats is the per-owner slice of the team performance view.
type TeamMemberStats struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Title         string  `json:"title"`
	Revenue       float64 `json:"revenue"`
	PipelineValue float64 `json:"pipelineValue"`
	DealsWon      int     `json:"dealsWon"`
	OpenDeals     int     `json:"openDeals"`
	WinRate       float64 `json:"winRate"`
}

// TeamSummary is the aggregated team performance view.
type TeamSummary struct {
	Members      []TeamMemberStats `json:"members"`
	TotalRevenue float64           `json:"totalRevenue"`
	DealsWon     int               `json:"dealsWon"`
	TotalDeals   int               `json:"totalDeals"`
	WinRate      float64           `json:"winRate"`
}

// DataCounts tracks how many records the last sync retrieved.
type DataCounts struct {
	Opportunities int        `json:"opportunities"`
	Accounts      int        `json:"accounts"`
	Users         int        `json:"users"`
	LastUpdated   *time.Time `json:"lastUpdated,omitempty"`
}

// SyncStatus is the process-local state of the full-sync operation.
type SyncStatus struct {
	Connected       bool       `json:"connected"`
	UsingSampleData bool       `json:"usingSampleData"`
	InProgress      bool       `json:"inProgress"`
	Progress        int        `json:"progress"`
	LastSync        *time.Time `json:"lastSync,omitempty"`
	LastError       string     `json:"lastError,omitempty"`
	Counts          DataCounts `json:"counts"`
}

// ConnectionState reports how the service is currently sourcing data.
type ConnectionState struct {
	Connected       bool   `json:"connected"`
	UsingSampleData bool   `json:"usingSampleData"`
	LastError       string `json:"lastError,omitempty"`
}
