package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vetchat/relay/pkg/config"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tracer := newWithExporter(&config.TracingConfig{Enabled: true, SampleRatio: 1}, exporter, nil)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func flush(t *testing.T, tracer *Tracer) {
	t.Helper()
	if err := tracer.provider.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("Enabled() = true, want false")
	}

	ctx, span := tracer.Start(context.Background(), "noop")
	span.End()
	if TraceID(ctx) != "" {
		t.Error("noop span should not carry a trace ID")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil, "test"); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestTracer_RecordsAttributes(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	ctx, span := tracer.Start(context.Background(), "relay.request")
	if TraceID(ctx) == "" {
		t.Error("expected a trace ID on the context")
	}
	SetProviderAttributes(span, "openai", "gpt-4o-mini")
	SetRequestAttributes(span, "req-1", "sk-abcdefghijklmnop", "client")
	SetTokenAttributes(span, 100, 20)
	span.End()
	flush(t, tracer)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}

	if attrs[AttrModel] != "gpt-4o-mini" {
		t.Errorf("%s = %q", AttrModel, attrs[AttrModel])
	}
	if attrs[AttrAPIKey] != "sk-a***" {
		t.Errorf("%s = %q, want redacted key", AttrAPIKey, attrs[AttrAPIKey])
	}
	if attrs[AttrTokensTotal] != "120" {
		t.Errorf("%s = %q, want 120", AttrTokensTotal, attrs[AttrTokensTotal])
	}
}

func TestSetErrorAttributes(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), "upstream")
	SetErrorAttributes(span, errors.New("connection reset"), "network")
	SetErrorAttributes(span, nil, "ignored")
	span.End()
	flush(t, tracer)

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status.Code)
	}
	if len(got.Events) != 1 {
		t.Errorf("got %d events, want 1 recorded error", len(got.Events))
	}
}

func TestFinish(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	_, ok := tracer.Start(context.Background(), "ok")
	Finish(ok, nil)
	ok.End()

	_, failed := tracer.Start(context.Background(), "failed")
	Finish(failed, errors.New("boom"))
	failed.End()
	flush(t, tracer)

	spans := exporter.GetSpans()
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("first span status = %v, want Ok", spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("second span status = %v, want Error", spans[1].Status.Code)
	}
}

func TestHTTPMiddleware(t *testing.T) {
	tracer, exporter := newRecordingTracer(t)

	const parentTrace = "4bf92f3577b34da6a3ce929d0e0e4736"
	var innerTrace string
	handler := HTTPMiddleware(tracer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		innerTrace = TraceID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("traceparent", "00-"+parentTrace+"-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	flush(t, tracer)

	if innerTrace != parentTrace {
		t.Errorf("handler trace ID = %q, want %q", innerTrace, parentTrace)
	}
	if got := rec.Header().Get(TraceIDHeader); got != parentTrace {
		t.Errorf("%s = %q, want %q", TraceIDHeader, got, parentTrace)
	}
	if spans := exporter.GetSpans(); len(spans) != 1 || spans[0].Name != "POST /api/chat" {
		t.Errorf("unexpected spans: %+v", spans)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 1, want: "ParentBased{root:AlwaysOnSampler"},
		{ratio: 0, want: "ParentBased{root:AlwaysOffSampler"},
		{ratio: 0.5, want: "ParentBased{root:TraceIDRatioBased{0.5}"},
	}

	for _, tt := range tests {
		got := createSampler(tt.ratio).Description()
		if len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
			t.Errorf("createSampler(%v).Description() = %q, want prefix %q", tt.ratio, got, tt.want)
		}
	}
}
