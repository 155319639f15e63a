// Package providers defines the upstream chat-completion abstraction used by
// the relay.
//
// # Results
//
// An upstream call ends in one of three ways:
//
//   - *Success: a 2xx response whose body is valid JSON. The body is kept
//     as raw bytes so the relay can return it unchanged.
//   - *Failure: any non-2xx response. The status is kept, and the message
//     is the upstream's error.message or the provider's fallback text.
//   - an error: TransportError, TimeoutError, or ParseError when no usable
//     response was obtained.
//
// Callers switch on the Result type, so every outcome is handled explicitly:
//
//	result, err := provider.SendCompletion(ctx, key, req)
//	if err != nil {
//	    // local failure
//	}
//	switch r := result.(type) {
//	case *providers.Success:
//	case *providers.Failure:
//	}
//
// # Base HTTP Provider
//
// HTTPProvider supplies the shared plumbing: a pooled transport, a per-call
// deadline, response classification, and health counters. Calls are never
// retried; recovery is left to the user.
//
// # Health
//
// Transport failures count against a provider's health. After
// UnhealthyThreshold consecutive failures it reports unhealthy until the
// next call or check gets a response.
package providers
