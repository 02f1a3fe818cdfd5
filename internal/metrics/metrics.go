// Package metrics holds the process-wide prometheus collectors. They are
// registered once on the default registry and served by GET /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "engser"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Quote aggregate metrics
	QuotesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_created_total",
		Help:      "Quotes persisted successfully",
	})

	QuoteNumberRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_number_retries_total",
		Help:      "Quote creations retried after a quote number collision",
	})

	QuoteOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_operation_duration_seconds",
			Help:      "Duration of quote store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Background jobs
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Background jobs by queue and outcome",
		},
		[]string{"queue", "outcome"},
	)
)

// TrackQuoteOperation returns a func that observes the elapsed time of a
// quote operation. Usage: defer metrics.TrackQuoteOperation("create")().
func TrackQuoteOperation(operation string) func() {
	start := time.Now()
	return func() {
		QuoteOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
