package providers

import (
	"fmt"
	"time"
)

// TransportError means the upstream could not be reached or its body could
// not be read. Cause may contain request details and must not be shown to
// relay callers.
type TransportError struct {
	Provider string
	Cause    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: upstream request failed: %v", e.Provider, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// TimeoutError means the per-call deadline expired before a response
// arrived.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no upstream response within %s", e.Provider, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// ParseError means a 2xx response carried a body that is not JSON.
// RawResponse holds at most a short prefix of it, for logs.
type ParseError struct {
	Provider    string
	RawResponse string
	Cause       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed upstream response: %v", e.Provider, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ResponseTooLargeError means the upstream body exceeded the read limit.
// The body is discarded rather than passed on truncated.
type ResponseTooLargeError struct {
	Provider string
	Limit    int64
}

func (e *ResponseTooLargeError) Error() string {
	return fmt.Sprintf("%s: upstream response exceeds %d bytes", e.Provider, e.Limit)
}

// ConfigError rejects a provider configuration at construction time.
type ConfigError struct {
	Provider string
	Field    string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Provider, e.Field, e.Message)
}
