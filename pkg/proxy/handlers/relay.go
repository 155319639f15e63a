package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"vetchat/relay/pkg/providers"
	"vetchat/relay/pkg/proxy"
	"vetchat/relay/pkg/proxy/middleware"
	"vetchat/relay/pkg/proxy/types"
	"vetchat/relay/pkg/telemetry/logging"
	"vetchat/relay/pkg/telemetry/metrics"
	"vetchat/relay/pkg/telemetry/tracing"
)

// RelayConfig holds the generation parameters forwarded upstream.
type RelayConfig struct {
	// DefaultModel is used when a request omits the model.
	DefaultModel string

	// MaxTokens is the completion token ceiling.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxBodyBytes caps the inbound body.
	MaxBodyBytes int64
}

// RelayHandler forwards one conversation to the upstream chat-completion
// API and returns its answer unchanged. It holds no per-conversation state.
type RelayHandler struct {
	provider    providers.Provider
	credentials *proxy.Credentials
	config      RelayConfig
	metrics     *metrics.Collector
	redactor    *logging.Redactor
}

// RelayOption configures a RelayHandler.
type RelayOption func(*RelayHandler)

// WithMetrics records relay and upstream metrics on c.
func WithMetrics(c *metrics.Collector) RelayOption {
	return func(h *RelayHandler) { h.metrics = c }
}

// WithRedactor sets the redactor applied to internal error details.
func WithRedactor(r *logging.Redactor) RelayOption {
	return func(h *RelayHandler) { h.redactor = r }
}

// NewRelayHandler creates a relay handler.
func NewRelayHandler(provider providers.Provider, creds *proxy.Credentials, cfg RelayConfig, opts ...RelayOption) *RelayHandler {
	h := &RelayHandler{
		provider:    provider,
		credentials: creds,
		config:      cfg,
		redactor:    logging.NewRedactor(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
//
// Request flow:
//
//  1. OPTIONS answers 200 with an empty body; other non-POST methods get 405
//  2. Decode the body (400 when too large or not JSON)
//  3. Check required fields and resolve the key (400, or 500 when a
//     server-held key is missing); no upstream call is made on failure
//  4. Require at least one user message (400); messages are otherwise
//     forwarded as received
//  5. Call the upstream once with the configured parameters
//  6. 2xx: write the upstream body unchanged with status 200
//     non-2xx: write {"error", "status"} with the upstream status
//     transport or parse failure: 500 with a redacted message
func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	span := tracing.SpanFromContext(ctx)

	resp := &proxy.ResponseMetadata{RequestID: requestID}
	defer func() {
		resp.Latency = time.Since(start)
		h.metrics.RecordRelay(resp.Outcome, resp.StatusCode, resp.Latency)
		tracing.SetOutcomeAttributes(span, resp.Outcome, resp.StatusCode)
		level := slog.LevelInfo
		if resp.StatusCode >= 500 {
			level = slog.LevelError
		} else if resp.StatusCode >= 400 {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "relay request finished", resp.LogAttrs()...)
	}()

	switch r.Method {
	case http.MethodOptions:
		proxy.WriteEmpty(w, http.StatusOK)
		resp.Outcome, resp.StatusCode = proxy.OutcomeSuccess, http.StatusOK
		return
	case http.MethodPost:
	default:
		h.fail(w, r, resp, proxy.NewMethodNotAllowed())
		return
	}

	req, bodySize, err := proxy.ParseRelayRequest(r, h.config.MaxBodyBytes)
	if err != nil {
		h.fail(w, r, resp, proxy.HandleError(err, h.redactor))
		return
	}
	h.metrics.RecordBodySize(bodySize)

	if relayErr := h.credentials.CheckFields(r, req); relayErr != nil {
		h.fail(w, r, resp, relayErr)
		return
	}

	apiKey, relayErr := h.credentials.Resolve(r, req)
	if relayErr != nil {
		h.fail(w, r, resp, relayErr)
		return
	}

	if err := req.Validate(); err != nil {
		h.fail(w, r, resp, proxy.HandleError(err, h.redactor, apiKey))
		return
	}

	model := req.Model
	if model == "" {
		model = h.config.DefaultModel
	}

	meta := proxy.ExtractRequestMetadata(r, req, requestID, model, h.credentials.Mode(), apiKey)
	tracing.SetRequestAttributes(span, requestID, apiKey, meta.CredentialMode)
	tracing.SetConversationAttributes(span, meta.MessageCount, meta.AttachmentCount)
	slog.DebugContext(ctx, "relaying conversation", meta.LogAttrs()...)

	upstreamReq := &providers.CompletionRequest{
		Model:       model,
		Messages:    req.Messages,
		MaxTokens:   h.config.MaxTokens,
		Temperature: h.config.Temperature,
	}

	upstreamStart := time.Now()
	result, err := h.provider.SendCompletion(logging.WithModel(ctx, model), apiKey, upstreamReq)
	resp.UpstreamLatency = time.Since(upstreamStart)

	if err != nil {
		h.metrics.RecordUpstream(h.provider.GetName(), model, 0, resp.UpstreamLatency)
		h.metrics.RecordUpstreamError(h.provider.GetName(), upstreamErrorType(err))
		h.fail(w, r, resp, proxy.HandleError(err, h.redactor, apiKey))
		return
	}

	h.metrics.RecordUpstream(h.provider.GetName(), model, result.Status(), resp.UpstreamLatency)

	if failErr := proxy.FromResult(result); failErr != nil {
		h.metrics.RecordUpstreamError(h.provider.GetName(), statusErrorType(result.Status()))
		h.fail(w, r, resp, failErr)
		return
	}

	success := result.(*providers.Success)
	resp.PromptTokens, resp.CompletionTokens = usage(success.Body)
	h.metrics.RecordTokens(h.provider.GetName(), model, resp.PromptTokens, resp.CompletionTokens)

	resp.Outcome, resp.StatusCode = proxy.OutcomeSuccess, http.StatusOK
	if err := proxy.WriteRawJSON(w, http.StatusOK, success.Body); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "request_id", requestID, "error", err)
	}
}

func (h *RelayHandler) fail(w http.ResponseWriter, r *http.Request, resp *proxy.ResponseMetadata, relayErr *proxy.Error) {
	resp.Outcome = string(relayErr.Kind)
	resp.StatusCode = relayErr.Status
	resp.Error = relayErr.Error()

	if err := proxy.WriteError(w, relayErr); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "request_id", resp.RequestID, "error", err)
	}
}

// usage reads token counts from a completion body, zero when absent.
func usage(body []byte) (prompt, completion int) {
	var resp types.CompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Usage == nil {
		return 0, 0
	}
	return resp.Usage.PromptTokens, resp.Usage.CompletionTokens
}

func upstreamErrorType(err error) string {
	var timeoutErr *providers.TimeoutError
	var parseErr *providers.ParseError
	var tooLargeErr *providers.ResponseTooLargeError
	switch {
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &tooLargeErr):
		return "too_large"
	default:
		return "network"
	}
}

func statusErrorType(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "auth"
	case status == http.StatusTooManyRequests:
		return "rate_limit"
	case status >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}
