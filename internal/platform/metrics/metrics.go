package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ManifestsSubmitted prometheus.Counter
	ValidationFailures prometheus.Counter
	GatewayErrors      prometheus.Counter
	IntakeFailures     prometheus.Counter
	RequestLatency     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ManifestsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "borderlink_manifests_submitted_total",
			Help: "Total number of manifests accepted by the gateway",
		}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "borderlink_validation_failures_total",
			Help: "Total number of submission attempts rejected by the validator",
		}),
		GatewayErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "borderlink_gateway_errors_total",
			Help: "Total number of failed BorderConnect calls",
		}),
		IntakeFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "borderlink_intake_failures_total",
			Help: "Total number of failed document intake calls",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "borderlink_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}
