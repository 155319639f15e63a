package proxy

import (
	"net/http"
	"time"

	"vetchat/relay/pkg/proxy/types"
	"vetchat/relay/pkg/telemetry/logging"
)

// RequestMetadata contains extracted metadata from a relay request.
// It is logged and attached to spans. It never carries message content.
type RequestMetadata struct {
	// RequestID is a unique identifier for the request.
	RequestID string

	// Model is the model identifier forwarded upstream.
	Model string

	// MessageCount is the number of messages in the conversation.
	MessageCount int

	// AttachmentCount is the number of image and file parts.
	AttachmentCount int

	// CredentialMode is the active key sourcing mode.
	CredentialMode string

	// APIKey is the key in redacted form.
	APIKey string

	// Method is the HTTP method.
	Method string

	// Path is the HTTP request path.
	Path string

	// UserAgent is the client's user agent string.
	UserAgent string

	// RemoteAddr is the client's address.
	RemoteAddr string

	// Timestamp is when the request was received.
	Timestamp time.Time
}

// ResponseMetadata describes the outcome of one relay call.
type ResponseMetadata struct {
	// RequestID is the unique identifier for the request.
	RequestID string

	// Outcome is "success" or the error kind.
	Outcome string

	// StatusCode is the HTTP status written to the caller.
	StatusCode int

	// Latency is the total request processing time.
	Latency time.Duration

	// UpstreamLatency is the time spent waiting for the upstream, zero if
	// no call was made.
	UpstreamLatency time.Duration

	// PromptTokens and CompletionTokens come from the upstream usage block.
	PromptTokens     int
	CompletionTokens int

	// Error is the redacted failure description.
	Error string
}

// OutcomeSuccess marks a relayed 2xx response.
const OutcomeSuccess = "success"

// ExtractRequestMetadata extracts loggable metadata from an HTTP request and
// its decoded body. The key, if any, is reduced to a short prefix.
func ExtractRequestMetadata(r *http.Request, req *types.RelayRequest, requestID, model, mode, apiKey string) *RequestMetadata {
	meta := &RequestMetadata{
		RequestID:      requestID,
		Model:          model,
		CredentialMode: mode,
		Method:         r.Method,
		Path:           r.URL.Path,
		UserAgent:      r.UserAgent(),
		RemoteAddr:     r.RemoteAddr,
		Timestamp:      time.Now(),
	}

	if apiKey != "" {
		meta.APIKey = logging.RedactAPIKey(apiKey)
	}

	if req != nil {
		meta.MessageCount = len(req.Messages)
		for _, msg := range req.Messages {
			for _, part := range msg.Content.Parts {
				if part.Type == types.PartTypeImageURL || part.Type == types.PartTypeFile {
					meta.AttachmentCount++
				}
			}
		}
	}

	return meta
}

// LogAttrs returns the request metadata as slog key-value pairs.
func (m *RequestMetadata) LogAttrs() []any {
	attrs := []any{
		"request_id", m.RequestID,
		"model", m.Model,
		"messages", m.MessageCount,
		"attachments", m.AttachmentCount,
		"credential_mode", m.CredentialMode,
		"path", m.Path,
		"remote_addr", m.RemoteAddr,
	}
	if m.APIKey != "" {
		attrs = append(attrs, "api_key", m.APIKey)
	}
	return attrs
}

// LogAttrs returns the response metadata as slog key-value pairs.
func (m *ResponseMetadata) LogAttrs() []any {
	attrs := []any{
		"request_id", m.RequestID,
		"outcome", m.Outcome,
		"status", m.StatusCode,
		"latency", m.Latency,
	}
	if m.UpstreamLatency > 0 {
		attrs = append(attrs, "upstream_latency", m.UpstreamLatency)
	}
	if m.PromptTokens > 0 || m.CompletionTokens > 0 {
		attrs = append(attrs, "prompt_tokens", m.PromptTokens, "completion_tokens", m.CompletionTokens)
	}
	if m.Error != "" {
		attrs = append(attrs, "error", m.Error)
	}
	return attrs
}
