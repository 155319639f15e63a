package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"vetchat/relay/pkg/prompt"
	"vetchat/relay/pkg/proxy/types"
)

// fakeSender records every call and answers from a queue of results.
type fakeSender struct {
	mu      sync.Mutex
	calls   [][]types.ChatMessage
	results []fakeResult
	block   chan struct{}
	entered chan struct{}
}

type fakeResult struct {
	reply string
	err   error
}

func (f *fakeSender) Send(ctx context.Context, messages []types.ChatMessage) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	var r fakeResult
	if len(f.results) > 0 {
		r, f.results = f.results[0], f.results[1:]
	}
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return r.reply, r.err
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestConversation(sender *fakeSender, opts ...Option) *Conversation {
	return New(sender, prompt.New(nil), opts...)
}

func TestConversation_Send(t *testing.T) {
	sender := &fakeSender{results: []fakeResult{{reply: "first answer"}, {reply: "second answer"}}}
	var states []State
	c := newTestConversation(sender, WithStateHook(func(s State) { states = append(states, s) }))
	ctx := context.Background()

	reply, err := c.Send(ctx, "Is this wet FIP?")
	if err != nil || reply != "first answer" {
		t.Fatalf("Send() = %q, %v", reply, err)
	}
	if _, err := c.Send(ctx, "What next?"); err != nil {
		t.Fatalf("second Send() error = %v", err)
	}

	transcript := c.Transcript()
	wantRoles := []string{types.RoleUser, types.RoleAssistant, types.RoleUser, types.RoleAssistant}
	if len(transcript) != len(wantRoles) {
		t.Fatalf("transcript has %d messages, want %d", len(transcript), len(wantRoles))
	}
	for i, role := range wantRoles {
		if transcript[i].Role != role {
			t.Errorf("transcript[%d].role = %q, want %q", i, transcript[i].Role, role)
		}
	}

	second := sender.calls[1]
	if len(second) != 4 || second[0].Role != types.RoleSystem || second[3].Content.PlainText() != "What next?" {
		t.Errorf("second call did not carry system + history + turn: %d messages", len(second))
	}

	wantStates := []State{StateSending, StateIdle, StateSending, StateIdle}
	if len(states) != len(wantStates) {
		t.Fatalf("states = %v, want %v", states, wantStates)
	}
	for i := range wantStates {
		if states[i] != wantStates[i] {
			t.Errorf("states = %v, want %v", states, wantStates)
			break
		}
	}
}

func TestConversation_SendWithAttachments(t *testing.T) {
	sender := &fakeSender{results: []fakeResult{{reply: "ok"}}}
	c := newTestConversation(sender)
	ctx := context.Background()

	if _, err := c.Attach(ctx, File{Name: "xray.png", Data: pngBytes}); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if len(c.Pending()) != 1 {
		t.Fatalf("pending = %d, want 1", len(c.Pending()))
	}

	if _, err := c.Send(ctx, "", File{Name: "labs.pdf", Data: minimalPDF(1)}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(c.Pending()) != 0 {
		t.Error("pending attachments should be consumed by the turn")
	}
	turn := sender.calls[0][1]
	parts := turn.Content.Parts
	if len(parts) != 3 {
		t.Fatalf("turn has %d parts, want 3", len(parts))
	}
	if parts[0].Text != prompt.DefaultAttachmentText {
		t.Errorf("text part = %q", parts[0].Text)
	}
	if parts[1].Type != types.PartTypeImageURL || parts[2].Type != types.PartTypeFile {
		t.Errorf("parts out of order: %s, %s", parts[1].Type, parts[2].Type)
	}
}

func TestConversation_EmptyTurn(t *testing.T) {
	sender := &fakeSender{}
	c := newTestConversation(sender)

	if _, err := c.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyTurn) {
		t.Errorf("error = %v, want ErrEmptyTurn", err)
	}
	if sender.callCount() != 0 {
		t.Error("no call expected")
	}
}

func TestConversation_Busy(t *testing.T) {
	sender := &fakeSender{
		results: []fakeResult{{reply: "done"}},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	c := newTestConversation(sender)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := c.Send(ctx, "first")
		done <- err
	}()
	<-sender.entered

	if c.State() != StateSending {
		t.Errorf("state = %v, want sending", c.State())
	}
	if _, err := c.Send(ctx, "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Send error = %v, want ErrBusy", err)
	}
	if _, err := c.Retry(ctx); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Retry error = %v, want ErrBusy", err)
	}
	if err := c.Reset(); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Reset error = %v, want ErrBusy", err)
	}

	close(sender.block)
	if err := <-done; err != nil {
		t.Fatalf("first Send() error = %v", err)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
	if sender.callCount() != 1 {
		t.Errorf("calls = %d, want 1", sender.callCount())
	}
}

func TestConversation_PendingDuringSend(t *testing.T) {
	sender := &fakeSender{
		results: []fakeResult{{reply: "done"}},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	c := newTestConversation(sender)
	ctx := context.Background()

	if _, err := c.Attach(ctx, File{Name: "a.png", Data: pngBytes}, File{Name: "b.gif", Data: gifBytes}); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Send(ctx, "look at these")
		done <- err
	}()
	<-sender.entered

	if _, err := c.Attach(ctx, File{Name: "c.png", Data: pngBytes}); err != nil {
		t.Fatalf("Attach() during send error = %v", err)
	}
	if c.RemovePending(0) {
		t.Error("RemovePending should refuse while a send is in flight")
	}

	close(sender.block)
	if err := <-done; err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	p := c.Pending()
	if len(p) != 1 || p[0].Name != "c.png" {
		t.Errorf("pending = %v, want only the attachment added during the send", p)
	}
	if !c.RemovePending(0) {
		t.Error("RemovePending should work again once idle")
	}
}

func TestConversation_FailureAndRetry(t *testing.T) {
	rateLimited := &RelayError{Status: 429, Message: "rate limited"}
	sender := &fakeSender{results: []fakeResult{{err: rateLimited}, {reply: "recovered"}}}
	c := newTestConversation(sender)
	ctx := context.Background()

	if _, err := c.Send(ctx, "question"); !errors.Is(err, rateLimited) {
		t.Fatalf("Send() error = %v", err)
	}
	if c.State() != StateError {
		t.Errorf("state = %v, want error", c.State())
	}
	if Describe(c.LastError()) != GuidanceRateLimit {
		t.Errorf("guidance = %q", Describe(c.LastError()))
	}
	if n := len(c.Transcript()); n != 1 {
		t.Errorf("transcript = %d messages, want the unanswered user turn", n)
	}
	if sender.callCount() != 1 {
		t.Error("failures must not be retried automatically")
	}

	reply, err := c.Retry(ctx)
	if err != nil || reply != "recovered" {
		t.Fatalf("Retry() = %q, %v", reply, err)
	}

	transcript := c.Transcript()
	if len(transcript) != 2 || transcript[0].Content.PlainText() != "question" {
		t.Errorf("transcript after retry = %+v", transcript)
	}
	if len(sender.calls[1]) != 2 {
		t.Errorf("retry sent %d messages, want system + turn", len(sender.calls[1]))
	}
	if c.LastError() != nil || c.State() != StateIdle {
		t.Error("successful retry should clear the error")
	}

	if _, err := c.Retry(ctx); !errors.Is(err, ErrNothingToRetry) {
		t.Errorf("Retry() after success error = %v, want ErrNothingToRetry", err)
	}
}

func TestConversation_EncodingFailure(t *testing.T) {
	sender := &fakeSender{}
	c := newTestConversation(sender)

	_, err := c.Send(context.Background(), "see file", File{Name: "a.zip", Data: zipBytes})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("error = %v, want ErrUnsupported", err)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
	if len(c.Transcript()) != 0 || sender.callCount() != 0 {
		t.Error("nothing should be sent or recorded")
	}
}

func TestConversation_ResetAndRemovePending(t *testing.T) {
	sender := &fakeSender{results: []fakeResult{{err: errors.New("boom")}}}
	c := newTestConversation(sender)
	ctx := context.Background()

	_, _ = c.Attach(ctx, File{Name: "a.png", Data: pngBytes}, File{Name: "b.gif", Data: gifBytes})
	if !c.RemovePending(0) || c.RemovePending(5) {
		t.Error("RemovePending returned the wrong result")
	}
	if p := c.Pending(); len(p) != 1 || p[0].Name != "b.gif" {
		t.Errorf("pending = %v", p)
	}

	_, _ = c.Send(ctx, "hi")
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if c.State() != StateIdle || c.LastError() != nil || len(c.Transcript()) != 0 || len(c.Pending()) != 0 {
		t.Error("Reset should clear all state")
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{StateIdle: "idle", StateSending: "sending", StateError: "error", State(9): "unknown"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
