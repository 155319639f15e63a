package conversation

import (
	"context"
	"errors"
	"net/http"
)

// User-facing guidance for failed turns.
const (
	GuidanceInvalidKey = "Invalid API key. Please check your OpenAI API key and try again."
	GuidanceRateLimit  = "Rate limit exceeded. Please wait a moment before sending again."
	GuidanceBilling    = "There is a billing issue with the OpenAI account. Please check the plan and payment details."
	GuidanceTimeout    = "The assistant took too long to answer. Please try again."
	GuidanceGeneric    = "Sorry, something went wrong while contacting the assistant. Please try again."
)

// Guidance maps a relay status code to a message for the user.
func Guidance(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return GuidanceInvalidKey
	case http.StatusTooManyRequests:
		return GuidanceRateLimit
	case http.StatusPaymentRequired:
		return GuidanceBilling
	default:
		return GuidanceGeneric
	}
}

// Describe returns the user-facing message for an error from Send or Retry.
func Describe(err error) string {
	var relayErr *RelayError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &relayErr):
		return relayErr.Guidance()
	case errors.Is(err, context.DeadlineExceeded):
		return GuidanceTimeout
	default:
		return GuidanceGeneric
	}
}
