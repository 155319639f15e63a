// Package metrics provides Prometheus metrics for the vetchat relay.
//
// # Metrics Categories
//
//   - Relay metrics: inbound request count, duration, body size and
//     rate limiter rejections
//   - Upstream metrics: provider health, call latency, errors and token usage
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordRelay("success", 200, time.Second)
//	collector.RecordUpstream("openai", "gpt-4o-mini", 200, 900*time.Millisecond)
//
//	mux.Handle("/metrics", collector.Handler())
//
// Each collector owns its registry, so tests can create as many as they need
// without duplicate registration panics. A nil or disabled collector is a
// no-op.
//
// # Cardinality
//
// Model names arrive from callers. After a fixed number of distinct values
// further models are recorded under "other".
package metrics
