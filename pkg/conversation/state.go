package conversation

// State is the send state of a conversation.
type State int

const (
	// StateIdle accepts a new turn.
	StateIdle State = iota

	// StateSending has a relay call in flight. Send and Retry fail with ErrBusy.
	StateSending

	// StateError follows a failed turn. A new turn or Retry is accepted.
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
