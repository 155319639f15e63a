package proxy

import (
	"fmt"
	"net/http"
	"strings"

	"vetchat/relay/pkg/config"
	"vetchat/relay/pkg/proxy/types"
)

// Validation messages for client credential mode.
const (
	MessageMissingFields       = "Missing required fields: messages and apiKey"
	MessageMissingMessages     = "Missing required field: messages"
	messageInvalidKeyFormatFmt = "Invalid API key format. Must start with %s"
)

// Credentials resolves the upstream API key for a request. Exactly one
// sourcing mode is active per instance.
type Credentials struct {
	mode      string
	prefix    string
	serverKey string
}

// NewCredentials creates a resolver. serverKey is only used in server mode.
func NewCredentials(mode, prefix, serverKey string) (*Credentials, error) {
	switch mode {
	case config.CredentialModeClient, config.CredentialModeServer:
	default:
		return nil, fmt.Errorf("invalid credential mode %q", mode)
	}
	return &Credentials{mode: mode, prefix: prefix, serverKey: serverKey}, nil
}

// Mode returns the active sourcing mode.
func (c *Credentials) Mode() string {
	return c.mode
}

// HasServerKey reports whether a server-held key is configured.
func (c *Credentials) HasServerKey() bool {
	return c.serverKey != ""
}

// ServerKey returns the server-held key for use by internal callers such as
// the health probe. It must never be written to a response.
func (c *Credentials) ServerKey() string {
	return c.serverKey
}

// CheckFields reports missing required fields. In client mode a missing key
// and missing messages share one message.
func (c *Credentials) CheckFields(r *http.Request, req *types.RelayRequest) *Error {
	if c.mode == config.CredentialModeClient {
		if len(req.Messages) == 0 || c.clientKey(r, req) == "" {
			return NewBadRequest(MessageMissingFields)
		}
		return nil
	}

	if len(req.Messages) == 0 {
		return NewBadRequest(MessageMissingMessages)
	}
	return nil
}

// Resolve returns the key to forward upstream. Client keys that do not
// carry the required prefix are rejected before any upstream call. In
// server mode any key sent by the caller is ignored.
func (c *Credentials) Resolve(r *http.Request, req *types.RelayRequest) (string, *Error) {
	if c.mode == config.CredentialModeServer {
		if c.serverKey == "" {
			return "", NewServerConfigError("API key not configured")
		}
		return c.serverKey, nil
	}

	key := c.clientKey(r, req)
	if key == "" {
		return "", NewBadRequest(MessageMissingFields)
	}
	if c.prefix != "" && !strings.HasPrefix(key, c.prefix) {
		return "", NewBadRequest(fmt.Sprintf(messageInvalidKeyFormatFmt, c.prefix))
	}
	return key, nil
}

// clientKey prefers the body field and falls back to a bearer header.
func (c *Credentials) clientKey(r *http.Request, req *types.RelayRequest) string {
	if req.APIKey != "" {
		return req.APIKey
	}
	if r == nil {
		return ""
	}
	return ExtractAPIKey(r)
}
