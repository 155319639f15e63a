package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"vetchat/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultDurationBuckets cover relay latencies from 100ms to 60s. Vision
// requests with attachments sit at the upper end.
var DefaultDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60}

// maxModelLabels bounds the distinct model label values. Model names come
// from callers, so unbounded values would grow the series count.
const maxModelLabels = 50

// Collector owns the relay's Prometheus metrics and a private registry.
//
// A disabled collector accepts every call and records nothing, so callers
// never need to check whether metrics are on.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	relayMetrics    *RelayMetrics
	upstreamMetrics *UpstreamMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector. If registry is nil a new one is created.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := *cfg
	if c.Namespace == "" {
		c.Namespace = "vetchat"
	}
	if c.Subsystem == "" {
		c.Subsystem = "relay"
	}
	if len(c.DurationBuckets) == 0 {
		c.DurationBuckets = DefaultDurationBuckets
	}

	return &Collector{
		config:             &c,
		registry:           registry,
		relayMetrics:       NewRelayMetrics(&c, registry),
		upstreamMetrics:    NewUpstreamMetrics(&c, registry),
		cardinalityLimiter: NewCardinalityLimiter(maxModelLabels),
	}
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.IsEnabled()
}

// RecordRelay records one completed relay request.
//
// outcome is "success" or an error kind such as "bad_request".
func (c *Collector) RecordRelay(outcome string, status int, duration time.Duration) {
	if !c.Enabled() {
		return
	}
	c.relayMetrics.RecordRequest(outcome, status, duration)
}

// RecordBodySize records the size of an inbound relay body.
func (c *Collector) RecordBodySize(sizeBytes int) {
	if !c.Enabled() {
		return
	}
	c.relayMetrics.RecordBodySize(sizeBytes)
}

// RecordRateLimited records a request rejected by the rate limiter.
func (c *Collector) RecordRateLimited() {
	if !c.Enabled() {
		return
	}
	c.relayMetrics.RecordRateLimited()
}

// RecordUpstream records one upstream call.
//
// status is the upstream HTTP status, or 0 when no response arrived.
func (c *Collector) RecordUpstream(provider, model string, status int, latency time.Duration) {
	if !c.Enabled() {
		return
	}
	model = c.modelLabel(model)
	c.upstreamMetrics.RecordRequest(provider, model, status, latency)
}

// RecordUpstreamError records a failed upstream call by error type.
//
// Common error types are "timeout", "network", "parse", "auth",
// "rate_limit", "client_error" and "server_error".
func (c *Collector) RecordUpstreamError(provider, errorType string) {
	if !c.Enabled() {
		return
	}
	c.upstreamMetrics.RecordError(provider, errorType)
}

// RecordTokens records the upstream usage block.
func (c *Collector) RecordTokens(provider, model string, promptTokens, completionTokens int) {
	if !c.Enabled() {
		return
	}
	model = c.modelLabel(model)
	c.upstreamMetrics.RecordTokens(provider, model, promptTokens, completionTokens)
}

// UpdateUpstreamHealth sets the upstream health gauge.
func (c *Collector) UpdateUpstreamHealth(provider string, healthy bool) {
	if !c.Enabled() {
		return
	}
	c.upstreamMetrics.UpdateHealth(provider, healthy)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry, in OpenMetrics format when the
// scraper asks for it.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		Registry:          c.registry,
		EnableOpenMetrics: true,
	})
}

func (c *Collector) modelLabel(model string) string {
	if model == "" {
		return "unknown"
	}
	if !c.cardinalityLimiter.Allow(fmt.Sprintf("model:%s", model)) {
		return "other"
	}
	return model
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether a label value may be used. Known values are always
// allowed; new ones only while under the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	_, exists := cl.current[labelSet]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
