package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"salespulse-api/internal/analytics"
	"salespulse-api/internal/cache"
	"salespulse-api/internal/crm"
	"salespulse-api/internal/domain"
	"salespulse-api/internal/insight"
	"salespulse-api/internal/observability/logger"
	"salespulse-api/internal/telemetry"

	"go.uber.org/zap"
)

var (
	ErrUnknownStrategy = errors.New("unknown insight strategy")
	ErrInvalidStage    = errors.New("unknown pipeline stage")
)

const (
	// StrategyRules selects the fixed-threshold insight generator.
	StrategyRules = "rules"
	// StrategyStats selects the distribution-relative generator.
	StrategyStats = "stats"

	defaultOpenLimit = 1000
	accountsLimit    = 1000
)

// DashboardOverview is the payload for the overview endpoint.
type DashboardOverview struct {
	Metrics    domain.RevenueMetrics  `json:"metrics"`
	Connection domain.ConnectionState `json:"connection"`
}

// DashboardConfig carries the tunables the analytics layer needs.
type DashboardConfig struct {
	QuarterlyQuota      float64
	ClosedWonWindowDays int
	CacheTTL            time.Duration
	Rules               insight.RuleConfig
	Stats               insight.StatConfig
}

// DashboardService orchestrates fetch, transform and aggregation for
// every dashboard read. It owns the live-vs-sample decision: the first
// failed authenticate flips the service to the sample source and the
// mode is only reset by a successful sync or restart.
type DashboardService struct {
	gateway crm.Gateway
	sample  crm.Source
	cache   cache.QueryCache
	metrics *telemetry.AppMetrics
	log     *logger.Logger
	cfg     DashboardConfig

	rules insight.Strategy
	stats insight.Strategy

	mu          sync.Mutex
	usingSample bool
	lastErr     string
}

// NewDashboardService wires the dashboard pipeline. gateway may be nil
// when no CRM credentials are configured; the service then always
// serves sample data.
func NewDashboardService(gateway crm.Gateway, sample crm.Source, qc cache.QueryCache, metrics *telemetry.AppMetrics, log *logger.Logger, cfg DashboardConfig) *DashboardService {
	if qc == nil {
		qc = cache.Noop{}
	}
	return &DashboardService{
		gateway: gateway,
		sample:  sample,
		cache:   qc,
		metrics: metrics,
		log:     log,
		cfg:     cfg,
		rules:   insight.NewRuleStrategy(cfg.Rules),
		stats:   insight.NewStatStrategy(cfg.Stats),
	}
}

// ConnectionState reports the current source mode.
func (s *DashboardService) ConnectionState() domain.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	connected := s.gateway != nil && !s.usingSample && s.gateway.Connected()
	return domain.ConnectionState{
		Connected:       connected,
		UsingSampleData: s.gateway == nil || s.usingSample,
		LastError:       s.lastErr,
	}
}

// ResetFallback re-enables the live source, typically after a sync
// proved the connection works again.
func (s *DashboardService) ResetFallback() {
	s.mu.Lock()
	s.usingSample = false
	s.lastErr = ""
	s.mu.Unlock()
}

// source resolves which CRM source serves this request. A failed
// authenticate is absorbed here: the error is recorded and the sample
// source returned, so dashboard reads never fail on bad credentials.
func (s *DashboardService) source(ctx context.Context) (crm.Source, bool) {
	if s.gateway == nil {
		return s.sample, false
	}

	s.mu.Lock()
	if s.usingSample {
		s.mu.Unlock()
		return s.sample, false
	}
	s.mu.Unlock()

	if s.gateway.Connected() {
		return s.gateway, true
	}

	if err := s.gateway.Authenticate(ctx); err != nil {
		s.engageFallback(ctx, err)
		return s.sample, false
	}

	return s.gateway, true
}

func (s *DashboardService) engageFallback(ctx context.Context, err error) {
	s.mu.Lock()
	first := !s.usingSample
	s.usingSample = true
	s.lastErr = err.Error()
	s.mu.Unlock()

	if first {
		if s.metrics != nil {
			s.metrics.FallbackActivations.Inc()
		}
		s.log.Warn(ctx, "CRM authentication failed, switching to sample data",
			logger.Module("dashboard"),
			logger.Action("fallback"),
			zap.Error(err),
		)
	}
}

// absorbAuthFailure engages sample fallback when a live query failed
// authentication mid-flight, e.g. an expired session whose refresh was
// rejected. Reports whether the caller should retry, which then reads
// from the sample source.
func (s *DashboardService) absorbAuthFailure(ctx context.Context, live bool, err error) bool {
	if !live {
		return false
	}
	var authErr *crm.AuthError
	if !errors.As(err, &authErr) {
		return false
	}
	s.engageFallback(ctx, err)
	return true
}

// fetchDeals performs the canonical fetch cycle: recent closed-won
// deals plus the open pipeline, normalized into the Deal model.
func (s *DashboardService) fetchDeals(ctx context.Context) ([]domain.Deal, error) {
	src, live := s.source(ctx)

	closed, err := fetchCached(ctx, s, live,
		fmt.Sprintf("closed_opportunities:days=%d", s.cfg.ClosedWonWindowDays),
		func(ctx context.Context) ([]crm.Opportunity, error) {
			return src.ClosedOpportunities(ctx, s.cfg.ClosedWonWindowDays)
		})
	if err != nil {
		if s.absorbAuthFailure(ctx, live, err) {
			return s.fetchDeals(ctx)
		}
		return nil, fmt.Errorf("fetch closed opportunities: %w", err)
	}

	open, err := fetchCached(ctx, s, live,
		fmt.Sprintf("opportunities:limit=%d", defaultOpenLimit),
		func(ctx context.Context) ([]crm.Opportunity, error) {
			return src.Opportunities(ctx, defaultOpenLimit)
		})
	if err != nil {
		if s.absorbAuthFailure(ctx, live, err) {
			return s.fetchDeals(ctx)
		}
		return nil, fmt.Errorf("fetch opportunities: %w", err)
	}

	records := make([]crm.Opportunity, 0, len(closed)+len(open))
	records = append(records, closed...)
	records = append(records, open...)

	deals, unmapped := crm.OpportunitiesToDeals(records)
	if unmapped > 0 {
		if s.metrics != nil {
			s.metrics.UnmappedStages.Add(float64(unmapped))
		}
		s.log.Warn(ctx, "unmapped CRM stage labels defaulted to prospecting",
			logger.Module("dashboard"),
			logger.Action("transform"),
			zap.Int("count", unmapped),
		)
	}

	return deals, nil
}

// Overview returns the headline revenue metrics plus connection state.
func (s *DashboardService) Overview(ctx context.Context) (*DashboardOverview, error) {
	deals, err := s.fetchDeals(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardOverview{
		Metrics:    analytics.Revenue(deals),
		Connection: s.ConnectionState(),
	}, nil
}

// Deals returns the normalized deal list with optional stage and
// free-text filters applied in fetch order.
func (s *DashboardService) Deals(ctx context.Context, stage, query string, limit int) ([]domain.Deal, error) {
	var stageFilter domain.DealStage
	if stage != "" {
		stageFilter = domain.DealStage(stage)
		if !stageFilter.IsValid() {
			return nil, ErrInvalidStage
		}
	}

	deals, err := s.fetchDeals(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	filtered := make([]domain.Deal, 0, len(deals))
	for _, d := range deals {
		if stageFilter != "" && d.Stage != stageFilter {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(d.Title), q) &&
			!strings.Contains(strings.ToLower(d.Company), q) {
			continue
		}
		filtered = append(filtered, d)
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// Insights runs the selected generation strategy over the current
// deal collection.
func (s *DashboardService) Insights(ctx context.Context, strategy string) ([]domain.Insight, error) {
	var gen insight.Strategy
	switch strategy {
	case "", StrategyRules:
		gen = s.rules
	case StrategyStats:
		gen = s.stats
	default:
		return nil, ErrUnknownStrategy
	}

	deals, err := s.fetchDeals(ctx)
	if err != nil {
		return nil, err
	}

	return gen.Generate(deals, time.Now()), nil
}

// MonthlyForecast returns the trailing calendar-month forecast series.
func (s *DashboardService) MonthlyForecast(ctx context.Context, months int) ([]domain.ForecastPoint, error) {
	deals, err := s.fetchDeals(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.MonthlyForecast(deals, time.Now(), months), nil
}

// QuarterOutlook returns the quota-tracked quarter forecast.
func (s *DashboardService) QuarterOutlook(ctx context.Context) (domain.QuarterOutlook, error) {
	deals, err := s.fetchDeals(ctx)
	if err != nil {
		return domain.QuarterOutlook{}, err
	}
	return analytics.QuarterOutlook(deals, time.Now(), s.cfg.QuarterlyQuota), nil
}

// Pipeline returns the per-stage breakdown.
func (s *DashboardService) Pipeline(ctx context.Context) ([]domain.StageSummary, error) {
	deals, err := s.fetchDeals(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.PipelineBreakdown(deals), nil
}

// Team returns per-member performance over the current deal set.
func (s *DashboardService) Team(ctx context.Context) (domain.TeamSummary, error) {
	deals, err := s.fetchDeals(ctx)
	if err != nil {
		return domain.TeamSummary{}, err
	}

	src, live := s.source(ctx)
	users, err := fetchCached(ctx, s, live, "users:active",
		func(ctx context.Context) ([]crm.User, error) {
			return src.Users(ctx)
		})
	if err != nil {
		if s.absorbAuthFailure(ctx, live, err) {
			return s.Team(ctx)
		}
		return domain.TeamSummary{}, fmt.Errorf("fetch users: %w", err)
	}

	members := make([]domain.TeamMember, 0, len(users))
	for _, u := range users {
		members = append(members, crm.UserToTeamMember(u))
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].Name < members[j].Name })

	return analytics.TeamPerformance(deals, members), nil
}

// fetchCached wraps a CRM fetch with the query cache. Sample-mode
// fetches bypass the cache so a recovered connection never serves
// stale sample payloads under a live key.
func fetchCached[T any](ctx context.Context, s *DashboardService, live bool, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if !live || s.cfg.CacheTTL <= 0 {
		out, err := fetch(ctx)
		if live {
			s.countCRMRequest(key, err)
		}
		return out, err
	}

	if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var out []T
		if err := json.Unmarshal(raw, &out); err == nil {
			if s.metrics != nil {
				s.metrics.CacheHits.Inc()
			}
			return out, nil
		}
		// Corrupt entry: fall through to a fresh fetch.
	} else if err != nil {
		s.log.Warn(ctx, "query cache read failed",
			logger.Module("dashboard"),
			logger.Action("cache_get"),
			zap.String("key", key),
			zap.Error(err),
		)
	}

	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	out, err := fetch(ctx)
	s.countCRMRequest(key, err)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cfg.CacheTTL); err != nil {
			s.log.Warn(ctx, "query cache write failed",
				logger.Module("dashboard"),
				logger.Action("cache_set"),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	return out, nil
}

// countCRMRequest records a live upstream call outcome. The resource
// label is the query key up to its first parameter separator.
func (s *DashboardService) countCRMRequest(key string, err error) {
	if s.metrics == nil {
		return
	}
	resource, _, _ := strings.Cut(key, ":")

	outcome := "ok"
	var authErr *crm.AuthError
	var apiErr *crm.APIError
	switch {
	case err == nil:
	case errors.As(err, &authErr):
		outcome = "auth_error"
	case errors.As(err, &apiErr):
		outcome = "api_error"
	default:
		outcome = "transport_error"
	}
	s.metrics.CRMRequests.WithLabelValues(resource, outcome).Inc()
}
