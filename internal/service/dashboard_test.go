package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"salespulse-api/internal/cache"
	"salespulse-api/internal/crm"
	"salespulse-api/internal/domain"
	"salespulse-api/internal/insight"
	"salespulse-api/internal/observability/logger"
	"salespulse-api/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway scripts CRM behavior for service tests.
type fakeGateway struct {
	mu            sync.Mutex
	authErr       error
	queryErr      error
	connected     bool
	authCalls     int
	queryCalls    int
	opportunities []crm.Opportunity
	closed        []crm.Opportunity
	accounts      []crm.Account
	users         []crm.User
}

func (f *fakeGateway) Authenticate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	if f.authErr != nil {
		return f.authErr
	}
	f.connected = true
	return nil
}

func (f *fakeGateway) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeGateway) fetch(records []crm.Opportunity) ([]crm.Opportunity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return records, nil
}

func (f *fakeGateway) Opportunities(_ context.Context, _ int) ([]crm.Opportunity, error) {
	return f.fetch(f.opportunities)
}

func (f *fakeGateway) ClosedOpportunities(_ context.Context, _ int) ([]crm.Opportunity, error) {
	return f.fetch(f.closed)
}

func (f *fakeGateway) Accounts(_ context.Context, _ int) ([]crm.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	return f.accounts, nil
}

func (f *fakeGateway) Users(_ context.Context) ([]crm.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	return f.users, nil
}

// memoryCache is a map-backed QueryCache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.entries[key] = value
	return nil
}

func testConfig() DashboardConfig {
	return DashboardConfig{
		QuarterlyQuota:      3200000,
		ClosedWonWindowDays: 30,
		Rules:               insight.DefaultRuleConfig(),
		Stats:               insight.DefaultStatConfig(),
	}
}

func newTestService(t *testing.T, gw crm.Gateway, qc cache.QueryCache, cfg DashboardConfig) *DashboardService {
	t.Helper()
	log, err := logger.New("test", "error")
	require.NoError(t, err)
	return NewDashboardService(gw, crm.NewSampleSource(), qc, telemetry.NewAppMetrics(), log, cfg)
}

func openOpportunity(id string, amount float64, stage string) crm.Opportunity {
	return crm.Opportunity{
		ID:          id,
		Name:        "Deal " + id,
		Amount:      amount,
		StageName:   stage,
		Probability: 50,
		CloseDate:   "2026-10-15",
	}
}

func TestDashboardService_FallsBackToSampleDataOnAuthFailure(t *testing.T) {
	gw := &fakeGateway{authErr: &crm.AuthError{Status: 400, Message: "invalid_grant"}}
	svc := newTestService(t, gw, nil, testConfig())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	// Sample dataset: one open-pipeline closed-won (95000) plus two
	// trailing-window wins (75000 + 55000).
	assert.Equal(t, float64(225000), overview.Metrics.TotalRevenue)
	assert.Equal(t, 3, overview.Metrics.DealsWon)
	assert.True(t, overview.Connection.UsingSampleData)
	assert.False(t, overview.Connection.Connected)
	assert.Contains(t, overview.Connection.LastError, "invalid_grant")
}

func TestDashboardService_AuthenticatesOnceThenReusesSession(t *testing.T) {
	gw := &fakeGateway{
		opportunities: []crm.Opportunity{openOpportunity("006A", 100000, "Proposal/Price Quote")},
	}
	svc := newTestService(t, gw, nil, testConfig())

	_, err := svc.Overview(context.Background())
	require.NoError(t, err)
	_, err = svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, gw.authCalls)
}

func TestDashboardService_FallbackIsSticky(t *testing.T) {
	gw := &fakeGateway{authErr: &crm.AuthError{Status: 401, Message: "expired"}}
	svc := newTestService(t, gw, nil, testConfig())

	for i := 0; i < 3; i++ {
		_, err := svc.Overview(context.Background())
		require.NoError(t, err)
	}

	// Only the first request hits the token endpoint.
	assert.Equal(t, 1, gw.authCalls)
}

func TestDashboardService_ResetFallbackRestoresLiveSource(t *testing.T) {
	gw := &fakeGateway{authErr: &crm.AuthError{Status: 400, Message: "bad creds"}}
	svc := newTestService(t, gw, nil, testConfig())

	_, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.True(t, svc.ConnectionState().UsingSampleData)

	gw.mu.Lock()
	gw.authErr = nil
	gw.mu.Unlock()
	svc.ResetFallback()

	_, err = svc.Overview(context.Background())
	require.NoError(t, err)

	state := svc.ConnectionState()
	assert.True(t, state.Connected)
	assert.False(t, state.UsingSampleData)
	assert.Empty(t, state.LastError)
}

func TestDashboardService_NilGatewayServesSampleData(t *testing.T) {
	svc := newTestService(t, nil, nil, testConfig())

	deals, err := svc.Deals(context.Background(), "", "", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, deals)

	state := svc.ConnectionState()
	assert.True(t, state.UsingSampleData)
	assert.False(t, state.Connected)
}

func TestDashboardService_QueryAuthFailureFallsBack(t *testing.T) {
	// Session held, then the upstream rejects the query's credentials:
	// the read must land on sample data, never surface the auth error.
	gw := &fakeGateway{connected: true, queryErr: &crm.AuthError{Status: 400, Message: "invalid_grant"}}
	svc := newTestService(t, gw, nil, testConfig())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, float64(225000), overview.Metrics.TotalRevenue)
	assert.True(t, overview.Connection.UsingSampleData)
	assert.False(t, overview.Connection.Connected)
	assert.Contains(t, overview.Connection.LastError, "invalid_grant")
	assert.Equal(t, 1, gw.queryCalls, "fallback engages on the first failed query")

	_, err = svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, gw.queryCalls, "fallback is sticky")
}

func TestDashboardService_QueryErrorPropagates(t *testing.T) {
	gw := &fakeGateway{queryErr: &crm.APIError{Status: 500, Message: "server unavailable"}}
	svc := newTestService(t, gw, nil, testConfig())

	_, err := svc.Overview(context.Background())
	require.Error(t, err)

	var apiErr *crm.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestDashboardService_DealsFilters(t *testing.T) {
	gw := &fakeGateway{
		opportunities: []crm.Opportunity{
			{ID: "1", Name: "Acme Expansion", Account: &crm.AccountRef{Name: "Acme Corp"}, Amount: 10000, StageName: "Proposal/Price Quote", CloseDate: "2026-10-01"},
			{ID: "2", Name: "Retail Rollout", Account: &crm.AccountRef{Name: "ShopCo"}, Amount: 20000, StageName: "Negotiation/Review", CloseDate: "2026-10-01"},
			{ID: "3", Name: "Pilot", Account: &crm.AccountRef{Name: "Acme Labs"}, Amount: 5000, StageName: "Prospecting", CloseDate: "2026-10-01"},
		},
	}
	svc := newTestService(t, gw, nil, testConfig())
	ctx := context.Background()

	t.Run("stage filter", func(t *testing.T) {
		deals, err := svc.Deals(ctx, string(domain.StageNegotiation), "", 0)
		require.NoError(t, err)
		require.Len(t, deals, 1)
		assert.Equal(t, "Retail Rollout", deals[0].Title)
	})

	t.Run("text filter matches title and company", func(t *testing.T) {
		deals, err := svc.Deals(ctx, "", "acme", 0)
		require.NoError(t, err)
		assert.Len(t, deals, 2)
	})

	t.Run("limit truncates", func(t *testing.T) {
		deals, err := svc.Deals(ctx, "", "", 2)
		require.NoError(t, err)
		assert.Len(t, deals, 2)
	})

	t.Run("invalid stage rejected", func(t *testing.T) {
		_, err := svc.Deals(ctx, "bogus", "", 0)
		assert.ErrorIs(t, err, ErrInvalidStage)
	})
}

func TestDashboardService_InsightsStrategySelection(t *testing.T) {
	svc := newTestService(t, nil, nil, testConfig())
	ctx := context.Background()

	t.Run("default is rules", func(t *testing.T) {
		insights, err := svc.Insights(ctx, "")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(insights), domain.MaxInsights)
		assert.NotEmpty(t, insights)
	})

	t.Run("stats strategy", func(t *testing.T) {
		insights, err := svc.Insights(ctx, StrategyStats)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(insights), domain.MaxInsights)
	})

	t.Run("unknown strategy rejected", func(t *testing.T) {
		_, err := svc.Insights(ctx, "oracle")
		assert.ErrorIs(t, err, ErrUnknownStrategy)
	})
}

func TestDashboardService_CachesLiveQueries(t *testing.T) {
	gw := &fakeGateway{
		opportunities: []crm.Opportunity{openOpportunity("006A", 100000, "Proposal/Price Quote")},
	}
	mc := newMemoryCache()
	cfg := testConfig()
	cfg.CacheTTL = time.Minute
	svc := newTestService(t, gw, mc, cfg)

	_, err := svc.Overview(context.Background())
	require.NoError(t, err)
	callsAfterFirst := gw.queryCalls

	_, err = svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, gw.queryCalls, "second overview should be served from cache")
	assert.Equal(t, 2, mc.sets)
}

func TestDashboardService_SampleModeBypassesCache(t *testing.T) {
	gw := &fakeGateway{authErr: &crm.AuthError{Status: 400, Message: "nope"}}
	mc := newMemoryCache()
	cfg := testConfig()
	cfg.CacheTTL = time.Minute
	svc := newTestService(t, gw, mc, cfg)

	_, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Zero(t, mc.sets, "sample payloads must not be cached")
}

func TestDashboardService_PipelineAndTeam(t *testing.T) {
	svc := newTestService(t, nil, nil, testConfig())
	ctx := context.Background()

	stages, err := svc.Pipeline(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 5)
	assert.Equal(t, domain.StageProspecting, stages[0].Stage)
	assert.Equal(t, 10, stages[0].Probability)

	team, err := svc.Team(ctx)
	require.NoError(t, err)
	assert.Len(t, team.Members, 5)
}

func TestDashboardService_ForecastShapes(t *testing.T) {
	svc := newTestService(t, nil, nil, testConfig())
	ctx := context.Background()

	points, err := svc.MonthlyForecast(ctx, 6)
	require.NoError(t, err)
	assert.Len(t, points, 6)

	outlook, err := svc.QuarterOutlook(ctx)
	require.NoError(t, err)
	assert.Len(t, outlook.Quarters, 4)
}
