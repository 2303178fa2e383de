package main

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"salespulse-api/internal/auth"
	"salespulse-api/internal/config"
	"salespulse-api/internal/http/docs"
	"salespulse-api/internal/http/handler"
	"salespulse-api/internal/http/middleware"
	"salespulse-api/internal/observability/logger"
	"salespulse-api/internal/ratelimit"
	"salespulse-api/internal/service"
	"salespulse-api/internal/telemetry"

	"github.com/go-chi/chi/v5"
)

// RouterDeps carries everything buildRouter needs. Nil handlers skip
// their routes, which keeps partial routers buildable in tests.
type RouterDeps struct {
	Cfg         *config.Config
	Log         *logger.Logger
	Validator   auth.TokenValidator
	RateLimiter *ratelimit.RedisRateLimiter
	Metrics     *telemetry.Metrics
	AppMetrics  *telemetry.AppMetrics
	Dashboard   *service.DashboardService

	// Handlers
	DashboardHandler  *handler.DashboardHandler
	DealHandler       *handler.DealHandler
	TeamHandler       *handler.TeamHandler
	SyncHandler       *handler.SyncHandler
	ConnectionHandler *handler.ConnectionHandler
}

// buildRouter assembles the chi.Router with all middlewares and routes.
func buildRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(deps.Log))
	r.Use(middleware.RecoveryMiddleware(deps.Log))
	r.Use(telemetry.OTelMiddleware(deps.Cfg.OTELServiceName))
	if deps.Metrics != nil {
		r.Use(telemetry.MetricsMiddleware(deps.Metrics))
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/openapi.yaml", docs.OpenAPIHandler().ServeHTTP)
	r.Get("/docs", docs.ScalarDocsHandler("/openapi.yaml").ServeHTTP)

	// Readiness carries the current data source so operators can tell a
	// live deployment from one that silently fell back to sample data.
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		mode := "sample"
		if deps.Dashboard != nil && deps.Dashboard.ConnectionState().Connected {
			mode = "live"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ready","source":%q}`, mode)
	})

	if deps.AppMetrics != nil {
		r.Get("/metrics", metricsGuard(deps.Cfg.MetricsToken, deps.AppMetrics.Handler()).ServeHTTP)
	}

	// Protected routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.JWTAuthMiddleware(deps.Validator))
		if deps.RateLimiter != nil {
			r.Use(middleware.RateLimitMiddleware(deps.RateLimiter, deps.Cfg.RateLimitPerUserPerMin))
		}

		if deps.DashboardHandler != nil {
			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/overview", deps.DashboardHandler.Overview)
				r.Get("/insights", deps.DashboardHandler.Insights)
				r.Get("/forecast", deps.DashboardHandler.Forecast)
				r.Get("/forecast/quarters", deps.DashboardHandler.QuarterForecast)
			})
		}

		if deps.DealHandler != nil {
			r.Get("/deals", deps.DealHandler.ListDeals)
			r.Get("/pipeline", deps.DealHandler.Pipeline)
		}

		if deps.TeamHandler != nil {
			r.Get("/team", deps.TeamHandler.Team)
		}

		if deps.SyncHandler != nil {
			r.Get("/sync/status", deps.SyncHandler.Status)
			r.Post("/sync", deps.SyncHandler.Trigger)
		}

		if deps.ConnectionHandler != nil {
			r.Post("/connection/test", deps.ConnectionHandler.Test)
		}
	})

	return r
}

// metricsGuard wraps the Prometheus handler with an optional shared
// token check. An empty token leaves the endpoint open.
func metricsGuard(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			supplied := r.Header.Get("X-Metrics-Token")
			if supplied == "" {
				if bearer := r.Header.Get("Authorization"); strings.HasPrefix(bearer, "Bearer ") {
					supplied = strings.TrimPrefix(bearer, "Bearer ")
				}
			}
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
