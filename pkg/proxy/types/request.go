package types

// RelayRequest is the body of a relay call.
type RelayRequest struct {
	// Messages is the conversation history, oldest first.
	Messages []ChatMessage `json:"messages"`

	// Model is the upstream model identifier. Empty selects the configured default.
	Model string `json:"model,omitempty"`

	// APIKey is the caller's credential in client credential mode.
	APIKey string `json:"apiKey,omitempty"`
}

// Validate checks what the relay itself depends on: a non-empty message
// list with at least one user message. Everything else about a message is
// the upstream's to judge.
func (r *RelayRequest) Validate() error {
	if len(r.Messages) == 0 {
		return &ValidationError{
			Field:   "messages",
			Message: "messages must contain at least one message",
		}
	}

	for i := range r.Messages {
		if r.Messages[i].Role == RoleUser {
			return nil
		}
	}
	return &ValidationError{
		Field:   "messages",
		Message: "messages must include at least one user message",
	}
}

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}
