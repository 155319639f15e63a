package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"vetchat/relay/pkg/proxy"
	"vetchat/relay/pkg/proxy/types"
)

// DefaultClientTimeout bounds one relay round trip. It exceeds the relay's
// own upstream deadline so the relay reports timeouts first.
const DefaultClientTimeout = 90 * time.Second

// maxReplyBytes caps the relay response read by the client.
const maxReplyBytes = 8 << 20

// ErrEmptyReply is returned when the relay succeeds but the completion
// carries no assistant text.
var ErrEmptyReply = errors.New("assistant reply was empty")

// Sender delivers one assembled message sequence and returns the assistant's
// reply text.
type Sender interface {
	Send(ctx context.Context, messages []types.ChatMessage) (string, error)
}

// RelayError is a non-2xx response from the relay.
type RelayError struct {
	// Status is the HTTP status returned by the relay.
	Status int

	// Message is the relay's error field.
	Message string

	// Detail is the relay's message field, set for internal errors.
	Detail string
}

// Error implements the error interface.
func (e *RelayError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("relay returned %d: %s: %s", e.Status, e.Message, e.Detail)
	}
	return fmt.Sprintf("relay returned %d: %s", e.Status, e.Message)
}

// Guidance returns the user-facing explanation for this error.
func (e *RelayError) Guidance() string {
	return Guidance(e.Status)
}

// Client sends conversations to a relay endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sends key in the request body. Leave unset when the relay
// holds the key.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithModel overrides the relay's default model.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient sets the HTTP client used for relay calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a relay client for endpoint, e.g.
// "http://127.0.0.1:8080/api/chat".
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send implements Sender.
func (c *Client) Send(ctx context.Context, messages []types.ChatMessage) (string, error) {
	body, err := json.Marshal(types.RelayRequest{
		Messages: messages,
		Model:    c.model,
		APIKey:   c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create relay request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(proxy.RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read relay response: %w", err)
	}

	slog.Debug("relay call finished",
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"messages", len(messages),
	)

	if resp.StatusCode != http.StatusOK {
		return "", decodeRelayError(resp.StatusCode, respBody)
	}

	var completion types.CompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("failed to decode completion: %w", err)
	}
	reply := completion.FirstContent()
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

func decodeRelayError(status int, body []byte) *RelayError {
	relayErr := &RelayError{Status: status, Message: http.StatusText(status)}

	var eb types.ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		relayErr.Message = eb.Error
		relayErr.Detail = eb.Message
	}
	return relayErr
}
