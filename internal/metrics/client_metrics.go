package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by client and dispatch metrics.
const (
	OutcomeSuccess       = "success"
	OutcomeTransport     = "transport_error"
	OutcomeRequestFailed = "request_failed"
	OutcomeDecode        = "deserialization_error"
	OutcomeValidation    = "validation_error"
	OutcomeFailure       = "failure"
)

var (
	// ClientRequests counts data-access calls by operation and outcome.
	ClientRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_client_requests_total",
		Help: "The total number of inventory API calls made by the client",
	}, []string{"operation", "outcome"})

	// ClientRequestDuration observes data-access call latency by operation.
	ClientRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_client_request_duration_seconds",
		Help:    "Latency of inventory API calls made by the client",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// DispatchInFlight is the number of dispatched tasks not yet settled.
	DispatchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inventory_dispatch_in_flight",
		Help: "Background tasks dispatched and not yet settled",
	})

	// DispatchCompleted counts settled background tasks by outcome.
	DispatchCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_dispatch_completed_total",
		Help: "The total number of settled background tasks",
	}, []string{"outcome"})
)

// ObserveClientRequest records one data-access call.
func ObserveClientRequest(operation, outcome string, elapsed time.Duration) {
	ClientRequests.WithLabelValues(operation, outcome).Inc()
	ClientRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
