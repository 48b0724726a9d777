// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AdventuresLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_adventures_logged_total",
			Help: "Adventures recorded, by category",
		},
		[]string{"category"},
	)

	AdventuresRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_adventures_rejected_total",
			Help: "Adventure log requests rejected before touching the ledger",
		},
		[]string{"reason"},
	)

	LedgerSaveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sidequest_ledger_save_duration_seconds",
			Help:    "Time spent persisting the ledger",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	ModelBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sidequest_model_build_duration_seconds",
			Help:    "Time spent building the similarity model",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	ModelRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sidequest_model_records",
			Help: "Records in the most recently built or loaded model",
		},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_recommendations_total",
			Help: "Recommendation queries, by outcome (hit or no_data)",
		},
		[]string{"outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidequest_http_requests_total",
			Help: "HTTP requests served, by route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sidequest_http_request_duration_seconds",
			Help:    "HTTP request latency, by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveLedgerSave records how long a backend save took
func ObserveLedgerSave(backend string, start time.Time) {
	LedgerSaveDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}
