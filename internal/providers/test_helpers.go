package providers

import (
	"encoding/json"
	"testing"
	"time"

	"vetchat/relay/pkg/providers"
	"vetchat/relay/pkg/proxy/types"
)

// ChatCompletionsPath is the path the OpenAI adapter posts to, relative to
// the mock server root when the base URL ends in /v1.
const ChatCompletionsPath = "/v1/chat/completions"

// TestConfig returns a test provider configuration.
func TestConfig(name string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:                name,
		BaseURL:             "http://localhost:8080/v1",
		Timeout:             5 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
}

// TestConfigWithURL returns a test config with a specific base URL.
func TestConfigWithURL(name, baseURL string) providers.ProviderConfig {
	config := TestConfig(name)
	config.BaseURL = baseURL
	return config
}

// TestCompletionRequest creates a test completion request with a single
// user message.
func TestCompletionRequest(model, text string) *providers.CompletionRequest {
	return &providers.CompletionRequest{
		Model:       model,
		Messages:    []types.ChatMessage{types.NewTextMessage(types.RoleUser, text)},
		MaxTokens:   1500,
		Temperature: 0.3,
	}
}

// DecodeBody unmarshals a recorded request body into a generic map.
func DecodeBody(t *testing.T, req RecordedRequest) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(req.Body, &out); err != nil {
		t.Fatalf("failed to decode recorded body %q: %v", req.Body, err)
	}
	return out
}
