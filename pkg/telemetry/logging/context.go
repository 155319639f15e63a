package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type fieldsKey struct{}

// requestFields are the per-request values added to log records.
type requestFields struct {
	requestID string
	model     string
}

func fieldsFrom(ctx context.Context) requestFields {
	f, _ := ctx.Value(fieldsKey{}).(requestFields)
	return f
}

// WithRequestID returns a context whose log records carry requestID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	f := fieldsFrom(ctx)
	f.requestID = requestID
	return context.WithValue(ctx, fieldsKey{}, f)
}

// GetRequestID returns the request ID stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	return fieldsFrom(ctx).requestID
}

// WithModel returns a context whose log records carry the upstream model.
func WithModel(ctx context.Context, model string) context.Context {
	f := fieldsFrom(ctx)
	f.model = model
	return context.WithValue(ctx, fieldsKey{}, f)
}

// GetModel returns the model stored in ctx, or "".
func GetModel(ctx context.Context) string {
	return fieldsFrom(ctx).model
}

// ContextFields returns the request fields in ctx as slog key-value pairs,
// with the trace and span IDs when a span is active.
func ContextFields(ctx context.Context) []any {
	f := fieldsFrom(ctx)
	var fields []any
	if f.requestID != "" {
		fields = append(fields, "request_id", f.requestID)
	}
	if f.model != "" {
		fields = append(fields, "model", f.model)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields, "trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
	}
	return fields
}
