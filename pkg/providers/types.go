package providers

import (
	"time"

	"vetchat/relay/pkg/proxy/types"
)

// CompletionRequest is the upstream chat-completion request body.
type CompletionRequest struct {
	// Model is the model identifier (e.g., "gpt-4o-mini").
	Model string `json:"model"`

	// Messages is the conversation history, forwarded unchanged.
	Messages []types.ChatMessage `json:"messages"`

	// MaxTokens is the completion token ceiling.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls sampling randomness. It is always sent, since zero
	// is a meaningful value.
	Temperature float64 `json:"temperature"`
}

// Result is the outcome of an upstream call that produced an HTTP response.
// It is either *Success or *Failure.
type Result interface {
	// Status returns the upstream HTTP status code.
	Status() int

	isResult()
}

// Success is a 2xx upstream response. Body is the raw JSON body, already
// checked to be valid JSON.
type Success struct {
	StatusCode int
	Body       []byte
}

// Status implements Result.
func (s *Success) Status() int { return s.StatusCode }

func (*Success) isResult() {}

// Failure is a non-2xx upstream response.
type Failure struct {
	// StatusCode is the upstream status, propagated to the caller unchanged.
	StatusCode int

	// Message is the upstream's own error message, or a generic fallback
	// when the body carries none.
	Message string
}

// Status implements Result.
func (f *Failure) Status() int { return f.StatusCode }

func (*Failure) isResult() {}

// ProviderHealth tracks the health status of a provider.
type ProviderHealth struct {
	// IsHealthy indicates whether the provider is currently healthy
	IsHealthy bool

	// LastCheck is the timestamp of the last call or health check
	LastCheck time.Time

	// LastError is the most recent error encountered (nil if healthy)
	LastError error

	// ConsecutiveFailures counts sequential transport failures
	ConsecutiveFailures int

	// LastSuccessfulRequest is the timestamp of the last request that got a response
	LastSuccessfulRequest time.Time

	// TotalRequests is the total number of requests sent to this provider
	TotalRequests int64

	// FailedRequests is the number of requests that got no usable response
	FailedRequests int64
}

// ProviderConfig contains configuration for a single provider instance.
type ProviderConfig struct {
	// Name is the provider identifier used in logs and metrics
	Name string

	// BaseURL is the API root; adapters append their endpoint paths
	BaseURL string

	// Timeout is the deadline for one upstream call
	Timeout time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration

	// FailureMessage is used when a non-2xx body carries no error message
	FailureMessage string

	// MaxResponseBytes bounds how much of an upstream body is read. Zero
	// selects DefaultMaxResponseBytes.
	MaxResponseBytes int64
}

// UnhealthyThreshold is the number of consecutive failures after which a
// provider reports unhealthy.
const UnhealthyThreshold = 3
