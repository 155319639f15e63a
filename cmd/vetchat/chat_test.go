package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"vetchat/relay/pkg/cli"
	"vetchat/relay/pkg/conversation"
	"vetchat/relay/pkg/proxy/types"
)

const chatKey = "sk-chat-0123456789abcdef"

// fakeRelay answers with queued statuses, then 200 with reply.
type fakeRelay struct {
	mu       sync.Mutex
	statuses []int
	reply    string
	requests []types.RelayRequest
}

func (f *fakeRelay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req types.RelayRequest
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	status := http.StatusOK
	if len(f.statuses) > 0 {
		status, f.statuses = f.statuses[0], f.statuses[1:]
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status != http.StatusOK {
		_ = json.NewEncoder(w).Encode(types.ErrorBody{Error: "upstream said no", Status: status})
		return
	}
	_ = json.NewEncoder(w).Encode(types.CompletionResponse{
		Choices: []types.Choice{{Message: types.NewTextMessage(types.RoleAssistant, f.reply)}},
	})
}

func startRelay(t *testing.T, reply string, statuses ...int) (*fakeRelay, string) {
	t.Helper()
	relay := &fakeRelay{reply: reply, statuses: statuses}
	srv := httptest.NewServer(relay)
	t.Cleanup(srv.Close)
	return relay, srv.URL + "/api/chat"
}

func TestChat_SendsConversation(t *testing.T) {
	relay, url := startRelay(t, "A ratio below 0.4 supports FIP.")

	out, err := execute(t, "What does a low A:G ratio mean?\n/quit\n",
		"chat", "--relay", url, "--api-key", chatKey, "--model", "gpt-4o")
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(out, "A ratio below 0.4 supports FIP.") {
		t.Errorf("reply not printed:\n%s", out)
	}

	if len(relay.requests) != 1 {
		t.Fatalf("relay calls = %d, want 1", len(relay.requests))
	}
	req := relay.requests[0]
	if req.APIKey != chatKey || req.Model != "gpt-4o" {
		t.Errorf("apiKey = %q, model = %q", req.APIKey, req.Model)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("messages = %d, want system and user", len(req.Messages))
	}
	if req.Messages[0].Role != types.RoleSystem || !strings.Contains(req.Messages[0].Content.PlainText(), "FIP reference data") {
		t.Error("system message does not carry the knowledge base")
	}
	if got := req.Messages[1].Content.PlainText(); got != "What does a low A:G ratio mean?" {
		t.Errorf("user turn = %q", got)
	}
}

func TestChat_FailureThenRetry(t *testing.T) {
	relay, url := startRelay(t, "Retry worked.", http.StatusUnauthorized)

	out, err := execute(t, "Is this wet FIP?\n/retry\n/quit\n", "chat", "--relay", url, "--api-key", chatKey)
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	if !strings.Contains(out, conversation.GuidanceInvalidKey) {
		t.Errorf("guidance not printed:\n%s", out)
	}
	if !strings.Contains(out, "Retry worked.") {
		t.Errorf("retried reply not printed:\n%s", out)
	}

	if len(relay.requests) != 2 {
		t.Fatalf("relay calls = %d, want 2", len(relay.requests))
	}
	first, second := relay.requests[0].Messages, relay.requests[1].Messages
	if len(first) != len(second) {
		t.Errorf("retry sent %d messages, first attempt %d", len(second), len(first))
	}
}

func TestChat_Attachments(t *testing.T) {
	relay, url := startRelay(t, "Noted.")

	path := filepath.Join(t.TempDir(), "bloodwork.txt")
	if err := os.WriteFile(path, []byte("Albumin 2.1 g/dL\nGlobulin 6.0 g/dL\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	input := strings.Join([]string{
		"/attach " + path,
		"/files",
		"/remove 1",
		"/files",
		"/attach " + path,
		"Please review.",
		"/files",
		"/quit",
	}, "\n") + "\n"

	out, err := execute(t, input, "chat", "--relay", url, "--api-key", chatKey)
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}

	for _, want := range []string{
		"attached bloodwork.txt (text/plain",
		"1. bloodwork.txt",
		"removed attachment 1",
		"no pending attachments",
		"Noted.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if len(relay.requests) != 1 {
		t.Fatalf("relay calls = %d, want 1", len(relay.requests))
	}
	msgs := relay.requests[0].Messages
	turn := msgs[len(msgs)-1].Content.PlainText()
	if !strings.Contains(turn, "Albumin 2.1 g/dL") {
		t.Errorf("attachment text not sent: %q", turn)
	}
}

func TestChat_Commands(t *testing.T) {
	relay, url := startRelay(t, "unused")

	out, err := execute(t, "/retry\n/bogus\n/remove 3\n/help\n/reset\n", "chat", "--relay", url)
	if err != nil {
		t.Fatalf("chat error = %v", err)
	}
	for _, want := range []string{
		conversation.ErrNothingToRetry.Error(),
		"unknown command /bogus",
		`no pending attachment "3"`,
		"/attach <path>",
		"conversation cleared",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if len(relay.requests) != 0 {
		t.Errorf("relay calls = %d, want 0", len(relay.requests))
	}
}

func TestChat_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "pdf mode", args: []string{"--pdf-mode", "raster"}},
		{name: "file size", args: []string{"--max-file-size", "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", append([]string{"chat"}, tt.args...)...)
			if got := cli.ExitCode(err); got != cli.ExitConfig {
				t.Errorf("ExitCode() = %d, want %d (err = %v)", got, cli.ExitConfig, err)
			}
		})
	}
}
