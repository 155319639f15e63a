package providers

import "context"

// Provider is the interface upstream chat-completion adapters implement.
//
// SendCompletion makes exactly one upstream call and never retries. An HTTP
// response of any status is a Result; only failing to get a usable response
// (transport failure, deadline, unparseable success body) is an error.
//
// Example usage:
//
//	result, err := provider.SendCompletion(ctx, apiKey, &providers.CompletionRequest{
//	    Model:    "gpt-4o-mini",
//	    Messages: msgs,
//	})
//	if err != nil {
//	    return err // transport or parse failure
//	}
//	switch r := result.(type) {
//	case *providers.Success:
//	    w.Write(r.Body)
//	case *providers.Failure:
//	    log.Printf("upstream rejected call: %d %s", r.StatusCode, r.Message)
//	}
type Provider interface {
	// SendCompletion forwards one chat-completion request using apiKey as the
	// bearer credential. The key is used for this call only and never stored.
	SendCompletion(ctx context.Context, apiKey string, req *CompletionRequest) (Result, error)

	// HealthCheck verifies the provider is reachable. apiKey may be empty, in
	// which case any HTTP response counts as reachable.
	HealthCheck(ctx context.Context, apiKey string) error

	// GetName returns the provider's configured name (e.g., "openai").
	GetName() string

	// GetHealth returns the health recorded by calls and checks so far.
	GetHealth() ProviderHealth

	// Close releases pooled connections. The provider must not be used afterwards.
	Close() error
}
