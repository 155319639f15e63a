package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vetchat/relay/pkg/proxy/types"
)

func relayStub(t *testing.T, status int, body string, captured *types.RelayRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Send(t *testing.T) {
	var got types.RelayRequest
	srv := relayStub(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"Likely wet FIP."}}]}`, &got)
	c := NewClient(srv.URL, WithAPIKey("sk-test"), WithModel("gpt-4o"))

	reply, err := c.Send(context.Background(), []types.ChatMessage{types.NewTextMessage(types.RoleUser, "hi")})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if reply != "Likely wet FIP." {
		t.Errorf("reply = %q", reply)
	}
	if got.APIKey != "sk-test" || got.Model != "gpt-4o" || len(got.Messages) != 1 {
		t.Errorf("request = %+v", got)
	}
}

func TestClient_SendErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
		wantDetail string
		wantErr    error
	}{
		{
			name:       "upstream rate limit",
			status:     http.StatusTooManyRequests,
			body:       `{"error":"rate limited","status":429}`,
			wantStatus: 429,
			wantMsg:    "rate limited",
		},
		{
			name:       "internal error",
			status:     http.StatusInternalServerError,
			body:       `{"error":"Internal server error","message":"failed to reach upstream"}`,
			wantStatus: 500,
			wantMsg:    "Internal server error",
			wantDetail: "failed to reach upstream",
		},
		{
			name:       "non-json error",
			status:     http.StatusBadGateway,
			body:       `bad gateway`,
			wantStatus: 502,
			wantMsg:    "Bad Gateway",
		},
		{
			name:    "empty reply",
			status:  http.StatusOK,
			body:    `{"choices":[]}`,
			wantErr: ErrEmptyReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := relayStub(t, tt.status, tt.body, nil)

			_, err := NewClient(srv.URL).Send(context.Background(), []types.ChatMessage{types.NewTextMessage(types.RoleUser, "hi")})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			var relayErr *RelayError
			if !errors.As(err, &relayErr) {
				t.Fatalf("error = %v, want RelayError", err)
			}
			if relayErr.Status != tt.wantStatus || relayErr.Message != tt.wantMsg || relayErr.Detail != tt.wantDetail {
				t.Errorf("RelayError = %+v", relayErr)
			}
		})
	}
}

func TestGuidance(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusUnauthorized, GuidanceInvalidKey},
		{http.StatusTooManyRequests, GuidanceRateLimit},
		{http.StatusPaymentRequired, GuidanceBilling},
		{http.StatusBadRequest, GuidanceGeneric},
		{http.StatusInternalServerError, GuidanceGeneric},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			if got := Guidance(tt.status); got != tt.want {
				t.Errorf("Guidance(%d) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(nil); got != "" {
		t.Errorf("Describe(nil) = %q", got)
	}
	if got := Describe(&RelayError{Status: 401}); got != GuidanceInvalidKey {
		t.Errorf("Describe(401) = %q", got)
	}
	if got := Describe(context.DeadlineExceeded); got != GuidanceTimeout {
		t.Errorf("Describe(deadline) = %q", got)
	}
	if got := Describe(errors.New("boom")); got != GuidanceGeneric {
		t.Errorf("Describe(other) = %q", got)
	}
}
