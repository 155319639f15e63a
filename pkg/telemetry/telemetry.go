package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"vetchat/relay/pkg/config"
	"vetchat/relay/pkg/telemetry/logging"
	"vetchat/relay/pkg/telemetry/metrics"
	"vetchat/relay/pkg/telemetry/tracing"
)

// Telemetry bundles the process-wide logger, metrics collector and tracer.
type Telemetry struct {
	logger  *logging.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

// New builds every telemetry component from configuration and installs the
// logger as the slog default. Logs go to w, or stdout when w is nil.
// Secrets passed here are masked in every log record.
func New(cfg *config.TelemetryConfig, version string, w io.Writer, secrets ...string) (*Telemetry, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Redactor:  logging.NewRedactor(secrets...),
		Writer:    w,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger.Slog())

	tracer, err := tracing.New(&cfg.Tracing, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	return &Telemetry{
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Metrics, nil),
		tracer:  tracer,
	}, nil
}

// Logger returns the redacting logger.
func (t *Telemetry) Logger() *logging.Logger {
	return t.logger
}

// Metrics returns the metrics collector.
func (t *Telemetry) Metrics() *metrics.Collector {
	return t.metrics
}

// Tracer returns the tracer.
func (t *Telemetry) Tracer() *tracing.Tracer {
	return t.tracer
}

// ApplyConfig applies the settings that may change while running. Only the
// log level is hot-reloadable.
func (t *Telemetry) ApplyConfig(cfg *config.TelemetryConfig) error {
	return t.logger.SetLevel(cfg.Logging.Level)
}

// Shutdown flushes pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if err := t.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}
	return errors.Join(errs...)
}
