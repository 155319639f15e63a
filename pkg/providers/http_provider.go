package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// DefaultMaxResponseBytes is the upstream body limit when none is configured.
const DefaultMaxResponseBytes = 32 << 20

// DefaultFailureMessage is the fallback for non-2xx bodies without a message.
const DefaultFailureMessage = "upstream API error"

// HTTPProvider is the base implementation for HTTP-based provider adapters.
// It provides connection pooling, an explicit per-call deadline, response
// classification, and health bookkeeping. It never retries.
//
// Concrete adapters embed this struct and implement SendCompletion and
// HealthCheck on top of Do and Classify.
type HTTPProvider struct {
	// config contains the provider configuration
	config ProviderConfig

	// client is the HTTP client with connection pooling
	client *http.Client

	// health tracks the provider's health status
	health ProviderHealth

	// healthMu protects concurrent access to health status
	healthMu sync.RWMutex
}

// NewHTTPProvider creates a new base HTTP provider with connection pooling.
func NewHTTPProvider(config ProviderConfig) *HTTPProvider {
	if config.FailureMessage == "" {
		config.FailureMessage = DefaultFailureMessage
	}
	if config.MaxResponseBytes <= 0 {
		config.MaxResponseBytes = DefaultMaxResponseBytes
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPProvider{
		config: config,
		// The deadline is applied per call through the context so it can be
		// reported as a TimeoutError.
		client: &http.Client{Transport: transport},
		health: ProviderHealth{
			IsHealthy: true, // Start optimistic
			LastCheck: time.Now(),
		},
	}
}

// GetName returns the provider's configured name.
func (p *HTTPProvider) GetName() string {
	return p.config.Name
}

// GetConfig returns the provider's configuration.
func (p *HTTPProvider) GetConfig() ProviderConfig {
	return p.config
}

// Do performs one HTTP request under the configured deadline and returns the
// status and body. Any response, whatever its status, is returned without
// error; only failing to obtain a response is an error.
func (p *HTTPProvider) Do(ctx context.Context, method, url string, body []byte, headers map[string]string) (int, []byte, error) {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("sending request to provider",
		"provider", p.config.Name,
		"method", method,
		"url", url,
	)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, p.transportFailure(ctx, err)
	}
	defer resp.Body.Close()

	limit := p.config.MaxResponseBytes
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return 0, nil, p.transportFailure(ctx, fmt.Errorf("failed to read response: %w", err))
	}
	if int64(len(respBody)) > limit {
		tooLarge := &ResponseTooLargeError{Provider: p.config.Name, Limit: limit}
		p.recordRequest(false, tooLarge)
		return 0, nil, tooLarge
	}

	p.recordRequest(true, nil)
	return resp.StatusCode, respBody, nil
}

func (p *HTTPProvider) transportFailure(ctx context.Context, err error) error {
	var out error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		out = &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout, Cause: err}
	} else {
		out = &TransportError{Provider: p.config.Name, Cause: err}
	}
	p.recordRequest(false, out)
	return out
}

// Classify turns an upstream response into a Result. A 2xx body must be
// valid JSON or a ParseError is returned. A non-2xx body yields a Failure
// carrying the upstream's own message when one can be extracted.
func (p *HTTPProvider) Classify(status int, body []byte) (Result, error) {
	if status >= 200 && status < 300 {
		if !json.Valid(body) {
			return nil, &ParseError{
				Provider:    p.config.Name,
				RawResponse: truncate(string(body), 256),
				Cause:       errors.New("response body is not valid JSON"),
			}
		}
		return &Success{StatusCode: status, Body: body}, nil
	}

	return &Failure{
		StatusCode: status,
		Message:    ExtractErrorMessage(body, p.config.FailureMessage),
	}, nil
}

// ExtractErrorMessage returns error.message from an OpenAI-style error body,
// or a bare string error field, falling back when neither is present.
func ExtractErrorMessage(body []byte, fallback string) string {
	var shaped struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &shaped); err != nil || len(shaped.Error) == 0 {
		return fallback
	}

	var detail struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(shaped.Error, &detail); err == nil && detail.Message != "" {
		return detail.Message
	}

	var text string
	if err := json.Unmarshal(shaped.Error, &text); err == nil && text != "" {
		return text
	}

	return fallback
}

// Close closes idle pooled connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	slog.Info("provider closed", "provider", p.config.Name)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
