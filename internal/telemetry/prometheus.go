package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AppMetrics holds Prometheus counters for domain-level events.
// The OTLP pipeline carries RED metrics; these counters track what
// the CRM integration and analytics pipeline are actually doing.
type AppMetrics struct {
	registry *prometheus.Registry

	// CRMRequests counts upstream CRM calls by resource and outcome
	// (ok, auth_error, api_error, transport_error).
	CRMRequests *prometheus.CounterVec

	// FallbackActivations counts switches into sample-data mode.
	FallbackActivations prometheus.Counter

	// CacheHits and CacheMisses track the query cache.
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// SyncRuns counts full sync executions by result (ok, error).
	SyncRuns *prometheus.CounterVec

	// UnmappedStages counts CRM stage labels that fell back to the
	// default pipeline stage during transformation.
	UnmappedStages prometheus.Counter
}

// NewAppMetrics creates a dedicated registry with all domain counters
// plus the standard Go runtime and process collectors.
func NewAppMetrics() *AppMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &AppMetrics{
		registry: registry,
		CRMRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salespulse_crm_requests_total",
			Help: "Upstream CRM requests by resource and outcome.",
		}, []string{"resource", "outcome"}),
		FallbackActivations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salespulse_fallback_activations_total",
			Help: "Switches into sample-data mode after CRM auth failures.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salespulse_query_cache_hits_total",
			Help: "Query cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salespulse_query_cache_misses_total",
			Help: "Query cache misses.",
		}),
		SyncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salespulse_sync_runs_total",
			Help: "Full sync executions by result.",
		}, []string{"result"}),
		UnmappedStages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salespulse_unmapped_stages_total",
			Help: "CRM stage labels mapped to the default pipeline stage.",
		}),
	}

	registry.MustRegister(
		m.CRMRequests,
		m.FallbackActivations,
		m.CacheHits,
		m.CacheMisses,
		m.SyncRuns,
		m.UnmappedStages,
	)

	return m
}

// Handler returns the HTTP handler for the /metrics endpoint
func (m *AppMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
