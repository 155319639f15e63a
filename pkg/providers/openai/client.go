package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vetchat/relay/pkg/providers"
	"vetchat/relay/pkg/telemetry/tracing"
)

const (
	// ProviderName is the default provider name.
	ProviderName = "openai"

	// DefaultBaseURL is the public OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// FailureMessage is reported when an error response carries no message.
	FailureMessage = "OpenAI API error"

	chatCompletionsPath = "/chat/completions"
	modelsPath          = "/models"
	tracerName          = "vetchat/providers/openai"
)

// Provider implements providers.Provider for OpenAI-compatible
// chat-completion APIs.
type Provider struct {
	*providers.HTTPProvider
	baseURL string
	tracer  trace.Tracer
}

// NewProvider creates an OpenAI provider. The base URL must be set; the
// name and failure message default when empty.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.BaseURL == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "base_url",
			Message:  "base URL is required",
		}
	}
	if config.Name == "" {
		config.Name = ProviderName
	}
	if config.FailureMessage == "" {
		config.FailureMessage = FailureMessage
	}

	return &Provider{
		HTTPProvider: providers.NewHTTPProvider(config),
		baseURL:      strings.TrimRight(config.BaseURL, "/"),
		tracer:       otel.Tracer(tracerName),
	}, nil
}

// SendCompletion posts the request to /chat/completions with apiKey as a
// bearer credential.
func (p *Provider) SendCompletion(ctx context.Context, apiKey string, req *providers.CompletionRequest) (providers.Result, error) {
	ctx, span := p.tracer.Start(ctx, "openai.chat_completion", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	tracing.SetProviderAttributes(span, p.GetName(), req.Model)

	body, err := json.Marshal(req)
	if err != nil {
		err = fmt.Errorf("failed to marshal request: %w", err)
		tracing.Finish(span, err)
		return nil, err
	}

	status, respBody, err := p.Do(ctx, http.MethodPost, p.baseURL+chatCompletionsPath, body, map[string]string{
		"Authorization": "Bearer " + apiKey,
	})
	if err != nil {
		tracing.Finish(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	result, err := p.Classify(status, respBody)
	if err != nil {
		tracing.Finish(span, err)
		return nil, err
	}

	switch r := result.(type) {
	case *providers.Success:
		setUsage(span, r.Body)
		tracing.Finish(span, nil)
	case *providers.Failure:
		tracing.SetErrorAttributes(span, fmt.Errorf("%s", r.Message), "upstream_error")
	}

	return result, nil
}

// HealthCheck lists models to verify the API is reachable. Without a key
// any response proves reachability; with one, a 401 means the server-held
// key was rejected.
func (p *Provider) HealthCheck(ctx context.Context, apiKey string) error {
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}

	status, _, err := p.Do(ctx, http.MethodGet, p.baseURL+modelsPath, nil, headers)
	switch {
	case err != nil:
	case status >= 500:
		err = fmt.Errorf("provider %q returned status %d", p.GetName(), status)
	case apiKey != "" && status == http.StatusUnauthorized:
		err = fmt.Errorf("provider %q rejected the configured API key", p.GetName())
	}

	p.RecordCheck(err)
	return err
}

func setUsage(span trace.Span, body []byte) {
	if !span.IsRecording() {
		return
	}
	var usage struct {
		Usage *struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &usage); err == nil && usage.Usage != nil {
		tracing.SetTokenAttributes(span, usage.Usage.PromptTokens, usage.Usage.CompletionTokens)
	}
}
