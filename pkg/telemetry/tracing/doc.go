// Package tracing provides OpenTelemetry tracing for the vetchat relay.
//
// Tracing is off by default. When enabled, spans are exported over OTLP/gRPC
// and the tracer provider is installed globally:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    insecure: true
//	    sample_ratio: 0.25
//
// HTTPMiddleware opens one server span per request. The upstream provider
// opens a child span per chat completion call and records the model, the
// upstream status and token usage. Message content and keys are never
// attached to spans; keys appear only in their redacted form.
package tracing
