package logging

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Redactor scrubs credentials from log fields and error messages.
type Redactor struct {
	patterns []*redactPattern

	mu      sync.RWMutex
	secrets []string
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Pattern names.
const (
	PatternBearerToken = "bearer_token"
	PatternAPIKey      = "api_key"
)

// secretMask replaces registered secret values.
const secretMask = "***"

// defaultPatterns run in order; bearer tokens first so "Bearer sk-..." is
// masked as a whole.
var defaultPatterns = []struct {
	name        string
	regex       string
	replacement string
}{
	{PatternBearerToken, `(?i)bearer\s+[a-zA-Z0-9\-._~+/]{8,}=*`, "Bearer ***"},
	{PatternAPIKey, `sk-[a-zA-Z0-9_\-]{3,}`, "sk-***"},
}

// NewRedactor creates a Redactor with the built-in credential patterns.
// Secrets are exact values (such as a server-held key that does not follow
// the sk- convention) that are masked wherever they appear.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}
	for _, s := range secrets {
		r.AddSecret(s)
	}
	return r
}

// AddSecret registers an exact value to mask. Values shorter than four
// characters are ignored to avoid masking ordinary text.
func (r *Redactor) AddSecret(secret string) {
	if len(secret) < 4 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.secrets {
		if s == secret {
			return
		}
	}
	r.secrets = append(r.secrets, secret)
}

// RedactString masks registered secrets, then pattern matches.
func (r *Redactor) RedactString(value string) string {
	return r.RedactSecrets(value)
}

// RedactSecrets masks the given per-call secrets in addition to the
// registered ones and the built-in patterns. The relay passes the caller's
// key here so it never appears in a response body.
func (r *Redactor) RedactSecrets(value string, extra ...string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, s := range extra {
		if len(s) >= 4 {
			redacted = strings.ReplaceAll(redacted, s, secretMask)
		}
	}

	r.mu.RLock()
	for _, s := range r.secrets {
		redacted = strings.ReplaceAll(redacted, s, secretMask)
	}
	r.mu.RUnlock()

	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}

	return redacted
}

// RedactArgs redacts variadic log arguments of the form key1, value1, ...
func (r *Redactor) RedactArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		if key, ok := redacted[i-1].(string); ok && isSensitiveKey(key) {
			redacted[i] = redactValue(redacted[i])
			continue
		}
		switch v := redacted[i].(type) {
		case string:
			redacted[i] = r.RedactString(v)
		case error:
			redacted[i] = r.RedactString(v.Error())
		}
	}

	return redacted
}

// isSensitiveKey checks if a key name indicates a credential.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	for _, sensitive := range []string{
		"secret", "token", "api_key", "apikey", "authorization", "password",
	} {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}

	return false
}

// redactValue redacts a sensitive value, keeping a short prefix of strings.
func redactValue(value any) any {
	switch v := value.(type) {
	case string:
		if v == "" {
			return ""
		}
		return RedactAPIKey(v)
	case fmt.Stringer:
		return "***"
	default:
		return "***"
	}
}

// RedactAPIKey redacts an API key, keeping only a prefix.
func RedactAPIKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "***"
	}

	// Keep first 4 characters for identification
	return apiKey[:4] + "***"
}
