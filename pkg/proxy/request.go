package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vetchat/relay/pkg/proxy/types"
)

const (
	// DefaultMaxRequestBodySize is used when no cap is configured (20MB).
	DefaultMaxRequestBodySize = 20 * 1024 * 1024

	// AuthorizationHeader is the HTTP header for bearer credentials.
	AuthorizationHeader = "Authorization"

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// ParseRelayRequest reads and decodes a relay request body and reports how
// many body bytes it read. It enforces the size limit and JSON syntax only;
// field checks happen in the relay, which knows the credential mode.
//
// A maxBytes of zero or less selects DefaultMaxRequestBodySize.
func ParseRelayRequest(r *http.Request, maxBytes int64) (*types.RelayRequest, int, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBodySize
	}

	if r.Body == nil {
		return nil, 0, NewBadRequest("Request body is required")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return nil, len(body), NewBadRequest(fmt.Sprintf("failed to read request body: %v", err))
	}

	if int64(len(body)) > maxBytes {
		return nil, len(body), NewBadRequest(fmt.Sprintf("request body exceeds maximum size of %d bytes", maxBytes))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, len(body), NewBadRequest("Request body is required")
	}

	var req types.RelayRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, len(body), NewBadRequest(fmt.Sprintf("invalid JSON: %v", err))
	}

	return &req, len(body), nil
}

// ExtractAPIKey extracts the API key from the Authorization header.
// It expects the format "Bearer <api-key>".
//
// If the header is missing or malformed, an empty string is returned.
func ExtractAPIKey(r *http.Request) string {
	authHeader := r.Header.Get(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// ExtractRequestID extracts the request ID from the X-Request-ID header.
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}
