package conversation

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"vetchat/relay/pkg/prompt"
	"vetchat/relay/pkg/proxy/types"
)

var (
	// ErrBusy is returned when a turn is already in flight.
	ErrBusy = errors.New("a message is already being sent")

	// ErrEmptyTurn is returned for a turn with no text and no attachments.
	ErrEmptyTurn = errors.New("message has no text or attachments")

	// ErrNothingToRetry is returned by Retry when the last turn did not fail.
	ErrNothingToRetry = errors.New("no failed message to retry")
)

// Conversation holds one chat session: the transcript, attachments pending
// for the next turn, and the send state. At most one turn is in flight.
// Failed turns are never retried automatically.
type Conversation struct {
	sender  Sender
	builder *prompt.Builder
	encoder *Encoder
	onState func(State)

	mu         sync.Mutex
	state      State
	transcript []types.ChatMessage
	pending    []Attachment
	lastErr    error
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithEncoder sets the attachment encoder.
func WithEncoder(e *Encoder) Option {
	return func(c *Conversation) { c.encoder = e }
}

// WithStateHook calls fn on every state change. fn runs synchronously
// without the conversation lock held.
func WithStateHook(fn func(State)) Option {
	return func(c *Conversation) { c.onState = fn }
}

// New creates a Conversation.
func New(sender Sender, builder *prompt.Builder, opts ...Option) *Conversation {
	c := &Conversation{
		sender:  sender,
		builder: builder,
		encoder: NewEncoder(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current send state.
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error of the last failed turn, nil after a success.
func (c *Conversation) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Transcript returns a copy of the transcript in chronological order. A
// failed turn stays in the transcript without a reply.
func (c *Conversation) Transcript() []types.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.transcript)
}

// Pending returns the attachments that will go with the next turn.
func (c *Conversation) Pending() []Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.pending)
}

// Attach converts files and adds them to the next turn.
func (c *Conversation) Attach(ctx context.Context, files ...File) ([]Attachment, error) {
	atts, err := c.encoder.EncodeAll(ctx, files)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.pending = append(c.pending, atts...)
	c.mu.Unlock()
	return atts, nil
}

// RemovePending drops the pending attachment at index i. It reports false
// for an out-of-range index and while a send is in flight, since that send
// has already taken the leading attachments.
func (c *Conversation) RemovePending(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSending || i < 0 || i >= len(c.pending) {
		return false
	}
	c.pending = slices.Delete(c.pending, i, i+1)
	return true
}

// Reset clears the transcript, pending attachments, and last error.
func (c *Conversation) Reset() error {
	c.mu.Lock()
	if c.state == StateSending {
		c.mu.Unlock()
		return ErrBusy
	}
	c.transcript = nil
	c.pending = nil
	c.lastErr = nil
	changed := c.state != StateIdle
	c.state = StateIdle
	c.mu.Unlock()

	if changed {
		c.notify(StateIdle)
	}
	return nil
}

// Send submits one user turn: text plus the pending attachments plus files.
// Files are converted concurrently and the call waits for all of them
// before anything is sent. On success the reply is appended to the
// transcript and returned.
//
// A conversion failure leaves the transcript and pending attachments
// unchanged. A relay failure moves the conversation to StateError; the user
// turn stays in the transcript and can be resubmitted with Retry.
func (c *Conversation) Send(ctx context.Context, text string, files ...File) (string, error) {
	c.mu.Lock()
	if c.state == StateSending {
		c.mu.Unlock()
		return "", ErrBusy
	}
	if strings.TrimSpace(text) == "" && len(files) == 0 && len(c.pending) == 0 {
		c.mu.Unlock()
		return "", ErrEmptyTurn
	}
	prev := c.state
	c.state = StateSending
	pending := slices.Clone(c.pending)
	c.mu.Unlock()
	c.notify(StateSending)

	encoded, err := c.encoder.EncodeAll(ctx, files)
	if err != nil {
		c.mu.Lock()
		c.state = prev
		c.mu.Unlock()
		c.notify(prev)
		return "", err
	}

	atts := append(pending, encoded...)
	turn := prompt.UserTurn(text, Parts(atts)...)

	c.mu.Lock()
	history := slices.Clone(c.transcript)
	c.transcript = append(c.transcript, turn)
	if len(c.pending) > len(pending) {
		c.pending = slices.Clone(c.pending[len(pending):])
	} else {
		c.pending = nil
	}
	c.mu.Unlock()

	return c.dispatch(ctx, history, turn)
}

// Retry resubmits the last failed turn with the same transcript.
func (c *Conversation) Retry(ctx context.Context) (string, error) {
	c.mu.Lock()
	switch c.state {
	case StateSending:
		c.mu.Unlock()
		return "", ErrBusy
	case StateError:
	default:
		c.mu.Unlock()
		return "", ErrNothingToRetry
	}
	n := len(c.transcript)
	if n == 0 {
		c.mu.Unlock()
		return "", ErrNothingToRetry
	}
	turn := c.transcript[n-1]
	history := slices.Clone(c.transcript[:n-1])
	c.state = StateSending
	c.mu.Unlock()
	c.notify(StateSending)

	return c.dispatch(ctx, history, turn)
}

func (c *Conversation) dispatch(ctx context.Context, history []types.ChatMessage, turn types.ChatMessage) (string, error) {
	reply, err := c.sender.Send(ctx, c.builder.Build(history, turn))

	c.mu.Lock()
	if err != nil {
		c.state = StateError
		c.lastErr = err
	} else {
		c.transcript = append(c.transcript, types.NewTextMessage(types.RoleAssistant, reply))
		c.state = StateIdle
		c.lastErr = nil
	}
	state := c.state
	c.mu.Unlock()
	c.notify(state)

	if err != nil {
		slog.Warn("conversation turn failed", "error", err)
		return "", err
	}
	return reply, nil
}

func (c *Conversation) notify(s State) {
	if c.onState != nil {
		c.onState(s)
	}
}
