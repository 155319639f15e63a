package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantLevel string
	}{
		{name: "implicit ok", body: "{}", wantLevel: "INFO"},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"x"}`, wantLevel: "WARN"},
		{name: "upstream failure", status: http.StatusBadGateway, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte(tt.body))
			}), RequestIDMiddleware, LoggingMiddleware)

			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			req.Header.Set(RequestIDHeader, "req-log-1")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			var rec map[string]any
			if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
				t.Fatalf("log is not one JSON record: %v\n%s", err, buf.String())
			}
			wantStatus := tt.status
			if wantStatus == 0 {
				wantStatus = http.StatusOK
			}
			if rec["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", rec["level"], tt.wantLevel)
			}
			if rec["status"] != float64(wantStatus) {
				t.Errorf("status = %v, want %d", rec["status"], wantStatus)
			}
			if rec["bytes"] != float64(len(tt.body)) {
				t.Errorf("bytes = %v, want %d", rec["bytes"], len(tt.body))
			}
			if rec["request_id"] != "req-log-1" || rec["path"] != "/api/chat" {
				t.Errorf("record = %v", rec)
			}
		})
	}
}
