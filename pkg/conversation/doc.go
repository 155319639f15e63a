// Package conversation manages one chat session with the relay.
//
// A Conversation keeps the transcript, converts uploads into attachments,
// assembles each turn with package prompt, and sends it through a Sender
// (normally a Client pointed at the relay). Sending is single-flight:
//
//	Idle ──Send──▶ Sending ──ok──▶ Idle
//	                  │
//	                  └──fail──▶ Error ──Send/Retry──▶ Sending
//
// A Send while another is in flight fails with ErrBusy. Nothing is retried
// automatically; Retry resubmits the failed turn on request.
//
// Uploads are classified by content sniffing, with the file extension as a
// fallback. Images travel as base64 data URLs. PDFs travel as native file
// parts, as extracted text, or as one image per page when a Rasterizer is
// configured. Text files travel as text.
package conversation
