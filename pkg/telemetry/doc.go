// Package telemetry provides observability for the vetchat relay.
//
// # Components
//
//   - logging: structured slog logging with credential redaction
//   - metrics: Prometheus metrics for relay and upstream calls
//   - tracing: OpenTelemetry tracing over OTLP/gRPC
//   - health: liveness, readiness and a scheduled upstream probe
//
// # Usage
//
//	tel, err := telemetry.New(&cfg.Telemetry, version, os.Stdout, serverKey)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	tel.Metrics().RecordRelay("success", 200, time.Second)
//
// The relay never logs message content or attachments. Keys are masked by
// the redacting handler wherever they appear in a record.
package telemetry
