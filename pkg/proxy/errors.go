package proxy

import (
	"errors"
	"fmt"
	"net/http"

	"vetchat/relay/pkg/providers"
	"vetchat/relay/pkg/proxy/types"
	"vetchat/relay/pkg/telemetry/logging"
)

// Kind classifies a relay failure.
type Kind string

// Relay error kinds.
const (
	// KindMethodNotAllowed is a request with a method other than POST or OPTIONS (405).
	KindMethodNotAllowed Kind = "method_not_allowed"

	// KindBadRequest is a malformed body, missing fields, or a bad credential shape (400).
	KindBadRequest Kind = "bad_request"

	// KindUpstreamError is a non-2xx upstream response; its status is passed through.
	KindUpstreamError Kind = "upstream_error"

	// KindInternalError is a local, transport, parse, or configuration failure (500).
	KindInternalError Kind = "internal_error"
)

// Messages returned in error bodies.
const (
	MessageMethodNotAllowed = "Method not allowed"
	MessageInternalError    = "Internal server error"
	MessageServerConfig     = "Server configuration error"
)

// Error is a relay failure with the HTTP status and body it maps to.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Status is the HTTP status returned to the caller.
	Status int

	// Message is the body's error field.
	Message string

	// Detail is the body's message field, set for internal errors only.
	// It must already be free of credentials.
	Detail string

	// Cause is the underlying error, kept for logs. It is never written to
	// the response.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Body returns the JSON body for the error.
func (e *Error) Body() types.ErrorBody {
	body := types.ErrorBody{Error: e.Message}
	switch e.Kind {
	case KindUpstreamError:
		body.Status = e.Status
	case KindInternalError:
		body.Message = e.Detail
	}
	return body
}

// NewMethodNotAllowed returns the 405 error.
func NewMethodNotAllowed() *Error {
	return &Error{Kind: KindMethodNotAllowed, Status: http.StatusMethodNotAllowed, Message: MessageMethodNotAllowed}
}

// NewBadRequest returns a 400 error with the given message.
func NewBadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Status: http.StatusBadRequest, Message: message}
}

// NewUpstreamError returns an error carrying the upstream's status and message.
func NewUpstreamError(status int, message string) *Error {
	return &Error{Kind: KindUpstreamError, Status: status, Message: message}
}

// NewInternalError returns a 500 error. detail is reported to the caller
// and must not contain credentials.
func NewInternalError(detail string, cause error) *Error {
	return &Error{
		Kind:    KindInternalError,
		Status:  http.StatusInternalServerError,
		Message: MessageInternalError,
		Detail:  detail,
		Cause:   cause,
	}
}

// NewServerConfigError returns the 500 error for a deployment that cannot
// serve requests, such as server credential mode without a key.
func NewServerConfigError(detail string) *Error {
	return &Error{
		Kind:    KindInternalError,
		Status:  http.StatusInternalServerError,
		Message: MessageServerConfig + ": " + detail,
	}
}

// HandleError maps any error to a relay Error. Errors that are not already
// relay errors become internal errors whose detail is redacted of every
// registered credential and of the given per-request secrets.
//
// Example usage:
//
//	if err != nil {
//	    relayErr := HandleError(err, redactor, apiKey)
//	    WriteError(w, relayErr)
//	    return
//	}
func HandleError(err error, redactor *logging.Redactor, secrets ...string) *Error {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		return relayErr
	}

	var valErr *types.ValidationError
	if errors.As(err, &valErr) {
		if valErr.Field == "" {
			return NewBadRequest(valErr.Message)
		}
		return NewBadRequest(fmt.Sprintf("%s: %s", valErr.Field, valErr.Message))
	}

	detail := err.Error()

	var timeoutErr *providers.TimeoutError
	var transportErr *providers.TransportError
	var parseErr *providers.ParseError
	var tooLargeErr *providers.ResponseTooLargeError
	switch {
	case errors.As(err, &timeoutErr):
		detail = fmt.Sprintf("upstream request timed out after %s", timeoutErr.Timeout)
	case errors.As(err, &transportErr):
		detail = fmt.Sprintf("failed to reach upstream: %v", transportErr.Cause)
	case errors.As(err, &parseErr):
		detail = fmt.Sprintf("failed to parse upstream response: %v", parseErr.Cause)
	case errors.As(err, &tooLargeErr):
		detail = fmt.Sprintf("upstream response exceeds %d bytes", tooLargeErr.Limit)
	}

	if redactor == nil {
		redactor = logging.NewRedactor()
	}
	return NewInternalError(redactor.RedactSecrets(detail, secrets...), err)
}

// FromResult maps a non-success upstream result to a relay Error. It
// returns nil for a Success.
func FromResult(result providers.Result) *Error {
	switch r := result.(type) {
	case *providers.Failure:
		return NewUpstreamError(r.StatusCode, r.Message)
	case *providers.Success:
		return nil
	default:
		return NewInternalError(fmt.Sprintf("unexpected upstream result %T", result), nil)
	}
}
