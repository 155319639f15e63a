package metrics

import (
	"strconv"
	"time"

	"vetchat/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks calls to the chat-completion provider.
//
// Metrics:
//   - vetchat_relay_upstream_health: 1=healthy, 0=unhealthy
//   - vetchat_relay_upstream_requests_total: calls by provider, model, status
//   - vetchat_relay_upstream_latency_seconds: call latency
//   - vetchat_relay_upstream_errors_total: failures by type
//   - vetchat_relay_upstream_tokens_total: usage by type
type UpstreamMetrics struct {
	health   *prometheus.GaugeVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	tokens   *prometheus.CounterVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_health",
				Help:      "Upstream health status (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream calls by status",
			},
			[]string{"provider", "model", "status"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_latency_seconds",
				Help:      "Upstream call latency in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"provider", "model"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_errors_total",
				Help:      "Total number of upstream errors by type",
			},
			[]string{"provider", "error_type"},
		),

		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_tokens_total",
				Help:      "Total number of tokens reported by the upstream",
			},
			[]string{"provider", "model", "type"},
		),
	}

	registry.MustRegister(
		um.health,
		um.requests,
		um.latency,
		um.errors,
		um.tokens,
	)

	return um
}

// UpdateHealth sets the health gauge.
func (um *UpstreamMetrics) UpdateHealth(provider string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	um.health.WithLabelValues(provider).Set(value)
}

// RecordRequest records one upstream call. A zero status is recorded as "none".
func (um *UpstreamMetrics) RecordRequest(provider, model string, status int, latency time.Duration) {
	statusLabel := "none"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	um.requests.WithLabelValues(provider, model, statusLabel).Inc()
	um.latency.WithLabelValues(provider, model).Observe(latency.Seconds())
}

// RecordError records an upstream failure.
func (um *UpstreamMetrics) RecordError(provider, errorType string) {
	um.errors.WithLabelValues(provider, errorType).Inc()
}

// RecordTokens records prompt and completion tokens separately.
func (um *UpstreamMetrics) RecordTokens(provider, model string, promptTokens, completionTokens int) {
	if promptTokens > 0 {
		um.tokens.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		um.tokens.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	}
}
