package metrics

import (
	"strconv"
	"time"

	"vetchat/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RelayMetrics tracks inbound relay requests.
//
// Metrics:
//   - vetchat_relay_requests_total: requests by outcome and status
//   - vetchat_relay_request_duration_seconds: end-to-end latency
//   - vetchat_relay_request_size_bytes: inbound body size
//   - vetchat_relay_rate_limited_total: requests rejected by the limiter
type RelayMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	sizeBytes       prometheus.Histogram
	rateLimited     prometheus.Counter
}

// NewRelayMetrics creates and registers relay metrics with the provided registry.
func NewRelayMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RelayMetrics {
	rm := &RelayMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of relay requests by outcome",
			},
			[]string{"outcome", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of relay requests in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"outcome"},
		),

		sizeBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_size_bytes",
				Help:      "Size of inbound relay bodies in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 9), // 1KB to 64MB
			},
		),

		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rate_limited_total",
				Help:      "Total number of relay requests rejected by the rate limiter",
			},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.sizeBytes,
		rm.rateLimited,
	)

	return rm
}

// RecordRequest records a completed relay request.
func (rm *RelayMetrics) RecordRequest(outcome string, status int, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(outcome, strconv.Itoa(status)).Inc()
	rm.requestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordBodySize records an inbound body size.
func (rm *RelayMetrics) RecordBodySize(sizeBytes int) {
	if sizeBytes > 0 {
		rm.sizeBytes.Observe(float64(sizeBytes))
	}
}

// RecordRateLimited increments the limiter rejection counter.
func (rm *RelayMetrics) RecordRateLimited() {
	rm.rateLimited.Inc()
}
