package prompt

import (
	"strings"

	"vetchat/relay/pkg/knowledge"
	"vetchat/relay/pkg/proxy/types"
)

// DefaultInstructions tell the model how to use the knowledge base.
const DefaultInstructions = `You are a veterinary diagnostic assistant specialising in feline infectious peritonitis (FIP).
Help veterinarians and cat owners interpret clinical signs, bloodwork, effusion analysis, imaging and PCR results.

When answering:
- Ground every statement in the reference data below and say when a question falls outside it.
- For lab results, compare each value with the bloodwork indicators and critical thresholds and name the ones that support or argue against FIP.
- Walk through the matching diagnostic algorithm and suggest the next most informative test.
- Compute the modified FIP score when enough values are available and show the arithmetic.
- List the relevant differential diagnoses.
- For treatment questions, quote dosing by clinical form and the monitoring schedule.
- Ask for missing history (age, breed, housing, effusion, neurological or ocular signs) when it would change the assessment.
- When images or documents are attached, describe what you can read from them before interpreting.`

// DefaultDisclaimer is appended to the instructions.
const DefaultDisclaimer = "This assistant supports, but does not replace, examination and diagnosis by a licensed veterinarian. Remind the user of this when giving diagnostic or treatment guidance."

// DefaultAttachmentText is sent when a turn has attachments but no text.
const DefaultAttachmentText = "Please review the attached files."

// Builder assembles the message sequence for one turn: a system message
// carrying instructions and the knowledge base, the transcript, and the
// current user turn.
type Builder struct {
	instructions string
	disclaimer   string
	knowledge    string
	maxHistory   int
	system       types.ChatMessage
}

// Option configures a Builder.
type Option func(*Builder)

// WithInstructions replaces the default instructions.
func WithInstructions(s string) Option {
	return func(b *Builder) { b.instructions = s }
}

// WithDisclaimer replaces the default disclaimer. An empty string omits it.
func WithDisclaimer(s string) Option {
	return func(b *Builder) { b.disclaimer = s }
}

// WithMaxHistory keeps only the most recent n transcript messages. Zero
// keeps the whole transcript.
func WithMaxHistory(n int) Option {
	return func(b *Builder) { b.maxHistory = n }
}

// New creates a Builder around a knowledge bundle. A nil bundle builds a
// system message without reference data.
func New(kb *knowledge.Bundle, opts ...Option) *Builder {
	b := &Builder{
		instructions: DefaultInstructions,
		disclaimer:   DefaultDisclaimer,
	}
	if kb != nil {
		b.knowledge = kb.PromptText()
	}
	for _, opt := range opts {
		opt(b)
	}
	b.system = types.NewTextMessage(types.RoleSystem, b.systemText())
	return b
}

func (b *Builder) systemText() string {
	var sb strings.Builder
	sb.WriteString(b.instructions)
	if b.disclaimer != "" {
		sb.WriteString("\n\n")
		sb.WriteString(b.disclaimer)
	}
	if b.knowledge != "" {
		sb.WriteString("\n\nFIP reference data (JSON):\n")
		sb.WriteString(b.knowledge)
	}
	return sb.String()
}

// SystemMessage returns the system message sent first on every turn.
func (b *Builder) SystemMessage() types.ChatMessage {
	return b.system
}

// Build returns the system message, the transcript, and the turn, in that
// order. System messages in the transcript are dropped so only one is sent.
// The transcript is not modified.
func (b *Builder) Build(transcript []types.ChatMessage, turn types.ChatMessage) []types.ChatMessage {
	history := make([]types.ChatMessage, 0, len(transcript))
	for _, m := range transcript {
		if m.Role != types.RoleSystem {
			history = append(history, m)
		}
	}
	if b.maxHistory > 0 && len(history) > b.maxHistory {
		history = history[len(history)-b.maxHistory:]
	}

	messages := make([]types.ChatMessage, 0, len(history)+2)
	messages = append(messages, b.system)
	messages = append(messages, history...)
	messages = append(messages, turn)
	return messages
}

// UserTurn builds the current user message. Without parts the content is
// plain text; with parts the text comes first, followed by the parts in
// order.
func UserTurn(text string, parts ...types.ContentPart) types.ChatMessage {
	text = strings.TrimSpace(text)
	if len(parts) == 0 {
		return types.NewTextMessage(types.RoleUser, text)
	}
	if text == "" {
		text = DefaultAttachmentText
	}
	all := make([]types.ContentPart, 0, len(parts)+1)
	all = append(all, types.TextPart(text))
	all = append(all, parts...)
	return types.NewPartsMessage(types.RoleUser, all...)
}
