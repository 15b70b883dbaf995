package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BillingMetrics holds all Prometheus metrics for the invoice console.
type BillingMetrics struct {
	SearchesTotal      prometheus.Counter
	TenantQueriesTotal *prometheus.CounterVec
	FallbacksTotal     *prometheus.CounterVec
	DownloadsTotal     *prometheus.CounterVec
	UpstreamLatency    prometheus.Histogram
}

// NewBillingMetrics initializes and registers the Prometheus metrics against
// the given registerer. Pass prometheus.DefaultRegisterer in production and a
// fresh registry in tests.
func NewBillingMetrics(reg prometheus.Registerer) *BillingMetrics {
	factory := promauto.With(reg)

	return &BillingMetrics{
		SearchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "invoice_console",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of cross-tenant invoice searches.",
		}),
		TenantQueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invoice_console",
			Subsystem: "search",
			Name:      "tenant_queries_total",
			Help:      "Per-tenant query outcomes during searches.",
		}, []string{"tenant", "outcome"}), // outcome: ok, auth_error, query_error
		FallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invoice_console",
			Subsystem: "graph",
			Name:      "fallbacks_total",
			Help:      "Times the billing endpoint was unavailable and substitute data served.",
		}, []string{"tenant"}),
		DownloadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invoice_console",
			Subsystem: "download",
			Name:      "requests_total",
			Help:      "Invoice download outcomes.",
		}, []string{"outcome"}), // outcome: ok, not_found
		UpstreamLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "invoice_console",
			Subsystem: "graph",
			Name:      "request_duration_seconds",
			Help:      "Latency of billing invoice listing calls.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
