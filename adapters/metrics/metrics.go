// Package metrics provides Prometheus metrics collection for pagecraft.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for pagecraft.
type Collector struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Gating metrics
	RateLimitHits *prometheus.CounterVec
	QuotaDenials  *prometheus.CounterVec

	// Usage metrics
	UsageRequests *prometheus.CounterVec
	UsageImages   *prometheus.CounterVec

	// Provider metrics
	RetryExhausted *prometheus.CounterVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
}

// New creates a new metrics collector with all metrics registered on reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pagecraft",
				Name:      "requests_total",
				Help:      "Total number of API requests processed",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pagecraft",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pagecraft",
				Name:      "rate_limit_hits_total",
				Help:      "Total number of requests denied by the IP rate limiter",
			},
			[]string{"operation"},
		),
		QuotaDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pagecraft",
				Name:      "quota_denials_total",
				Help:      "Total number of requests denied by the period quota",
			},
			[]string{"plan"},
		),
		UsageRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pagecraft",
				Name:      "usage_requests_total",
				Help:      "Committed requests by plan",
			},
			[]string{"plan"},
		),
		UsageImages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pagecraft",
				Name:      "usage_images_total",
				Help:      "Committed images by plan",
			},
			[]string{"plan"},
		),
		RetryExhausted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pagecraft",
				Name:      "retry_exhausted_total",
				Help:      "Provider calls that failed after exhausting retries",
			},
			[]string{"provider"},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pagecraft",
				Name:      "config_reloads_total",
				Help:      "Successful configuration reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pagecraft",
				Name:      "config_reload_errors_total",
				Help:      "Failed configuration reloads",
			},
		),
	}
}
