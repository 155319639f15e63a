package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Message roles accepted by the relay.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content part types.
const (
	PartTypeText     = "text"
	PartTypeImageURL = "image_url"
	PartTypeFile     = "file"
)

// ChatMessage is a single message in a conversation transcript.
//
// A message decoded from JSON keeps its original bytes and encodes back to
// exactly those, so fields the relay does not model (name, tool_calls,
// unknown part types) reach the upstream untouched. Role and Content are a
// read-only view of the decoded message.
type ChatMessage struct {
	// Role is the author of the message ("system", "user", or "assistant").
	Role string `json:"role"`

	// Content is either plain text or an ordered list of content parts.
	Content Content `json:"content"`

	raw json.RawMessage
}

type chatMessageJSON struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// Raw returns the bytes the message was decoded from, or nil for a message
// built in code.
func (m ChatMessage) Raw() json.RawMessage {
	return m.raw
}

// MarshalJSON implements json.Marshaler.
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	return json.Marshal(chatMessageJSON{Role: m.Role, Content: m.Content})
}

// UnmarshalJSON implements json.Unmarshaler. Content of a shape the view
// cannot represent leaves Content empty; the raw bytes still carry it.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var view struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &view); err != nil {
		return err
	}

	*m = ChatMessage{Role: view.Role, raw: append(json.RawMessage(nil), data...)}
	if err := m.Content.UnmarshalJSON(view.Content); err != nil {
		m.Content = Content{}
	}
	return nil
}

// NewTextMessage returns a message with plain text content.
func NewTextMessage(role, text string) ChatMessage {
	return ChatMessage{Role: role, Content: TextContent(text)}
}

// NewPartsMessage returns a message with multipart content.
func NewPartsMessage(role string, parts ...ContentPart) ChatMessage {
	return ChatMessage{Role: role, Content: PartsContent(parts...)}
}

// Content holds message content. On the wire it is a JSON string when the
// message is plain text and a JSON array when it carries content parts.
type Content struct {
	Text  string
	Parts []ContentPart
}

// TextContent returns plain text content.
func TextContent(text string) Content {
	return Content{Text: text}
}

// PartsContent returns multipart content. A nil or empty list still
// serializes as an array.
func PartsContent(parts ...ContentPart) Content {
	if parts == nil {
		parts = []ContentPart{}
	}
	return Content{Parts: parts}
}

// IsMultipart reports whether the content is a list of parts.
func (c Content) IsMultipart() bool {
	return c.Parts != nil
}

// IsZero reports whether no content is present.
func (c Content) IsZero() bool {
	return c.Text == "" && len(c.Parts) == 0
}

// PlainText concatenates the text of the content, skipping attachments.
func (c Content) PlainText() string {
	if !c.IsMultipart() {
		return c.Text
	}
	var buf bytes.Buffer
	for _, p := range c.Parts {
		if p.Type != PartTypeText {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(p.Text)
	}
	return buf.String()
}

// MarshalJSON implements json.Marshaler.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsMultipart() {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = Content{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*c = Content{Text: text}
		return nil
	case '[':
		var parts []ContentPart
		if err := json.Unmarshal(trimmed, &parts); err != nil {
			return err
		}
		*c = PartsContent(parts...)
		return nil
	default:
		return fmt.Errorf("content must be a string or an array of parts")
	}
}

// ContentPart is one element of multipart content.
type ContentPart struct {
	// Type is "text", "image_url", or "file".
	Type string `json:"type"`

	// Text is set for text parts.
	Text string `json:"text,omitempty"`

	// ImageURL is set for image parts.
	ImageURL *ImageURL `json:"image_url,omitempty"`

	// File is set for provider-native document parts.
	File *FileData `json:"file,omitempty"`
}

// ImageURL references an image, usually as a base64 data URL.
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// FileData carries an inline document the provider parses natively.
type FileData struct {
	Filename string `json:"filename,omitempty"`
	FileData string `json:"file_data"`
}

// TextPart returns a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: PartTypeText, Text: text}
}

// ImagePart returns an image part holding a base64 data URL.
func ImagePart(mimeType, base64Data string) ContentPart {
	return ContentPart{
		Type:     PartTypeImageURL,
		ImageURL: &ImageURL{URL: DataURL(mimeType, base64Data)},
	}
}

// FilePart returns a document part holding a base64 data URL.
func FilePart(filename, mimeType, base64Data string) ContentPart {
	return ContentPart{
		Type: PartTypeFile,
		File: &FileData{Filename: filename, FileData: DataURL(mimeType, base64Data)},
	}
}

// DataURL formats base64 data as a data URL.
func DataURL(mimeType, base64Data string) string {
	return "data:" + mimeType + ";base64," + base64Data
}
