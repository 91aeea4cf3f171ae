// Package metrics registers the Prometheus collectors of the service.
//
// Query outcomes are recorded here as rows, empty or failed. Callers of the
// repository only ever see an empty result for the last two; this is the
// channel that tells them apart.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcomes.
const (
	OutcomeRows   = "rows"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
)

var (
	// QueryTotal counts executed lookups by query name and outcome.
	QueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flights_query_total",
			Help: "Executed flight lookups by query and outcome.",
		},
		[]string{"query", "outcome"},
	)

	// QueryFailures counts failed lookups by query name and failure category.
	QueryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flights_query_failures_total",
			Help: "Failed flight lookups by query and failure category.",
		},
		[]string{"query", "category"},
	)

	// QueryDuration observes lookup latency.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flights_query_duration_seconds",
			Help:    "Flight lookup duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	// HTTPRequestsTotal counts API requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flights_http_requests_total",
			Help: "HTTP requests handled by the flight API.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes API latency. Routes are Echo path templates,
	// which keeps label cardinality bounded.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flights_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveQuery records one lookup.
func ObserveQuery(query string, rows int, category string, seconds float64) {
	QueryDuration.WithLabelValues(query).Observe(seconds)

	switch {
	case category != "":
		QueryTotal.WithLabelValues(query, OutcomeFailed).Inc()
		QueryFailures.WithLabelValues(query, category).Inc()
	case rows == 0:
		QueryTotal.WithLabelValues(query, OutcomeEmpty).Inc()
	default:
		QueryTotal.WithLabelValues(query, OutcomeRows).Inc()
	}
}
