package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salespulse-api/internal/auth"
	"salespulse-api/internal/config"
	"salespulse-api/internal/crm"
	"salespulse-api/internal/http/handler"
	"salespulse-api/internal/insight"
	"salespulse-api/internal/observability/logger"
	"salespulse-api/internal/service"
	"salespulse-api/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var routerTestSecret = []byte("router-test-secret-0123456789abcdef")

// newTestRouter builds a full router backed by the sample dataset and
// a real HS256 validator. No CRM, Redis or OTel required.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	cfg := &config.Config{
		OTELServiceName:        "salespulse-api-test",
		AppEnv:                 "test",
		JWTIssuer:              "salespulse",
		JWTAudience:            "salespulse-api",
		RateLimitPerUserPerMin: 100,
	}
	log, err := logger.New("salespulse-api-test", "error")
	require.NoError(t, err)

	metrics := telemetry.NewAppMetrics()
	dashboard := service.NewDashboardService(nil, crm.NewSampleSource(), nil, metrics, log, service.DashboardConfig{
		QuarterlyQuota:      3200000,
		ClosedWonWindowDays: 30,
		Rules:               insight.DefaultRuleConfig(),
		Stats:               insight.DefaultStatConfig(),
	})
	syncService := service.NewSyncService(nil, crm.NewSampleSource(), dashboard, metrics, log)

	return buildRouter(RouterDeps{
		Cfg:               cfg,
		Log:               log,
		Validator:         auth.NewHS256Validator(routerTestSecret, "salespulse", "salespulse-api", time.Minute),
		AppMetrics:        metrics,
		Dashboard:         dashboard,
		DashboardHandler:  handler.NewDashboardHandler(dashboard),
		DealHandler:       handler.NewDealHandler(dashboard),
		TeamHandler:       handler.NewTeamHandler(dashboard),
		SyncHandler:       handler.NewSyncHandler(syncService),
		ConnectionHandler: handler.NewConnectionHandler(http.DefaultClient, log),
	})
}

func bearerFor(t *testing.T, subject string) string {
	t.Helper()
	token, err := auth.MintToken(routerTestSecret, subject, "Test User", "salespulse", "salespulse-api", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "health endpoint should return 200")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response["status"])
}

func TestHealthEndpoint_ReturnsRequestID(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID, "X-Request-Id should be generated and returned")
	assert.Contains(t, requestID, "req_", "Request ID should have req_ prefix")
}

func TestHealthEndpoint_PreservesRequestID(t *testing.T) {
	r := newTestRouter(t)

	clientRequestID := "req_1234567890_abcdef123456"
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", clientRequestID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, clientRequestID, w.Header().Get("X-Request-Id"))
}

func TestReadyEndpoint_ReportsSampleSource(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ready", response["status"])
	assert.Equal(t, "sample", response["source"])
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	r := newTestRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/dashboard/overview"},
		{http.MethodGet, "/v1/deals"},
		{http.MethodGet, "/v1/team"},
		{http.MethodGet, "/v1/sync/status"},
		{http.MethodPost, "/v1/sync"},
		{http.MethodPost, "/v1/connection/test"},
	}

	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s should require auth", route.method, route.path)

		var envelope struct {
			OK    bool `json:"ok"`
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.False(t, envelope.OK)
		assert.Equal(t, "MISSING_AUTHORIZATION", envelope.Error.Code)
	}
}

func TestOverviewEndToEnd_SampleData(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/overview", nil)
	req.Header.Set("Authorization", bearerFor(t, "user_1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var envelope struct {
		OK   bool `json:"ok"`
		Data struct {
			Metrics struct {
				TotalRevenue float64 `json:"totalRevenue"`
				DealsWon     int     `json:"dealsWon"`
			} `json:"metrics"`
			Connection struct {
				UsingSampleData bool `json:"usingSampleData"`
			} `json:"connection"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.OK)
	assert.Equal(t, float64(225000), envelope.Data.Metrics.TotalRevenue)
	assert.Equal(t, 3, envelope.Data.Metrics.DealsWon)
	assert.True(t, envelope.Data.Connection.UsingSampleData)
}

func TestDealsEndToEnd_StageFilter(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/deals?stage=negotiation", nil)
	req.Header.Set("Authorization", bearerFor(t, "user_1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		OK   bool              `json:"ok"`
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.OK)
	assert.NotEmpty(t, envelope.Data)
}

func TestExpiredToken_Rejected(t *testing.T) {
	r := newTestRouter(t)

	token, err := auth.MintToken(routerTestSecret, "user_1", "Test User", "salespulse", "salespulse-api", -2*time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/overview", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}
