package domain

// InsightCategory classifies a generated insight.
type InsightCategory string

const (
	InsightRisk           InsightCategory = "risk"
	InsightOpportunity    InsightCategory = "opportunity"
	InsightForecast       InsightCategory = "forecast"
	InsightTrend          InsightCategory = "trend"
	InsightTiming         InsightCategory = "timing"
	InsightRecommendation InsightCategory = "recommendation"
)

// InsightPriority is the coarse impact level attached to an insight.
type InsightPriority string

const (
	PriorityHigh   InsightPriority = "high"
	PriorityMedium InsightPriority = "medium"
	PriorityLow    InsightPriority = "low"
)

// MaxInsights caps how many insights a strategy may return per request.
const MaxInsights = 4

// Insight is a generated, human-readable observation derived from the
// deal collection. Ephemeral: recomputed whenever the underlying deals
// change, never persisted.
type Insight struct {
	ID          string          `json:"id"`
	Category    InsightCategory `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    InsightPriority `json:"priority"`
	// Confidence is a fixed per-rule constant (0-100) attached by the
	// statistics-driven strategy; zero when the rule strategy produced it.
	Confidence int    `json:"confidence,omitempty"`
	Action     string `json:"action,omitempty"`
}
