package conversation

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"vetchat/relay/pkg/proxy/types"
)

// Kind is the media kind of an attachment.
type Kind string

const (
	// KindImage is a photo or scan sent as inline image data.
	KindImage Kind = "image"

	// KindDocument is a PDF or text file.
	KindDocument Kind = "document"
)

// Attachment is an encoded file waiting to be sent with the next user turn.
type Attachment struct {
	// Name is the original file name.
	Name string

	// Kind is image or document.
	Kind Kind

	// MIME is the detected media type without parameters.
	MIME string

	// Data is the file content encoded as standard base64.
	Data string

	// Text is set for documents sent as text instead of inline data.
	Text string

	// Size is the original size in bytes.
	Size int64

	// Pages is the page count of a PDF, zero when unknown.
	Pages int
}

// SizeLabel returns the size in human-readable form, e.g. "1.2 MB".
func (a Attachment) SizeLabel() string {
	if a.Size < 0 {
		return humanize.Bytes(0)
	}
	return humanize.Bytes(uint64(a.Size))
}

// String describes the attachment for listings.
func (a Attachment) String() string {
	if a.Pages > 0 {
		return fmt.Sprintf("%s (%s, %s, %d pages)", a.Name, a.MIME, a.SizeLabel(), a.Pages)
	}
	return fmt.Sprintf("%s (%s, %s)", a.Name, a.MIME, a.SizeLabel())
}

// Part converts the attachment to the content part the provider expects:
// images as data URLs, text as a labelled text part, and other documents as
// native file parts.
func (a Attachment) Part() types.ContentPart {
	switch {
	case a.Kind == KindImage:
		return types.ImagePart(a.MIME, a.Data)
	case a.Text != "":
		return types.TextPart(fmt.Sprintf("[Attached file: %s]\n%s", a.Name, a.Text))
	default:
		return types.FilePart(a.Name, a.MIME, a.Data)
	}
}

// Parts converts attachments to content parts, preserving order.
func Parts(attachments []Attachment) []types.ContentPart {
	parts := make([]types.ContentPart, 0, len(attachments))
	for _, a := range attachments {
		parts = append(parts, a.Part())
	}
	return parts
}
