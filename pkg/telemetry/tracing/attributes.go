package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vetchat/relay/pkg/telemetry/logging"
)

// Attribute keys. Relay-specific keys use the "vetchat." namespace.
const (
	AttrProvider = "vetchat.provider"
	AttrModel    = "vetchat.model"

	AttrRequestID      = "vetchat.request_id"
	AttrAPIKey         = "vetchat.api_key"
	AttrCredentialMode = "vetchat.credential_mode"
	AttrMessages       = "vetchat.messages"
	AttrAttachments    = "vetchat.attachments"

	AttrOutcome        = "vetchat.outcome"
	AttrUpstreamStatus = "vetchat.upstream.status"

	AttrTokensPrompt     = "vetchat.tokens.prompt"
	AttrTokensCompletion = "vetchat.tokens.completion"
	AttrTokensTotal      = "vetchat.tokens.total"

	AttrErrorType    = "vetchat.error.type"
	AttrErrorMessage = "error.message"
)

// SetProviderAttributes sets provider-related attributes on a span.
func SetProviderAttributes(span trace.Span, provider, model string) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
	)
}

// SetRequestAttributes sets request-related attributes on a span. The key
// is reduced to its first characters.
func SetRequestAttributes(span trace.Span, requestID, apiKey, credentialMode string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRequestID, requestID),
		attribute.String(AttrCredentialMode, credentialMode),
	}
	if apiKey != "" {
		attrs = append(attrs, attribute.String(AttrAPIKey, logging.RedactAPIKey(apiKey)))
	}
	span.SetAttributes(attrs...)
}

// SetConversationAttributes records the message and attachment counts.
func SetConversationAttributes(span trace.Span, messages, attachments int) {
	span.SetAttributes(
		attribute.Int(AttrMessages, messages),
		attribute.Int(AttrAttachments, attachments),
	)
}

// SetOutcomeAttributes records how a relay request ended.
func SetOutcomeAttributes(span trace.Span, outcome string, status int) {
	span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Int(AttrUpstreamStatus, status),
	)
}

// SetTokenAttributes sets token count attributes on a span.
func SetTokenAttributes(span trace.Span, promptTokens, completionTokens int) {
	span.SetAttributes(
		attribute.Int(AttrTokensPrompt, promptTokens),
		attribute.Int(AttrTokensCompletion, completionTokens),
		attribute.Int(AttrTokensTotal, promptTokens+completionTokens),
	)
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "rate_limit")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
