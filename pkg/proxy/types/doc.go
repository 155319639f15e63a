// Package types defines the wire types of the relay: chat messages with
// text or multipart content, the relay request body, and the error body.
//
// # Content
//
// Message content is a JSON string for plain text and a JSON array for
// multipart content:
//
//	{"role": "user", "content": "Is this effusion consistent with FIP?"}
//
//	{"role": "user", "content": [
//	    {"type": "text", "text": "Bloodwork attached"},
//	    {"type": "image_url", "image_url": {"url": "data:image/png;base64,..."}},
//	    {"type": "file", "file": {"filename": "cbc.pdf", "file_data": "data:application/pdf;base64,..."}}
//	]}
//
// Content round-trips through encoding/json in the same shape it arrived.
//
// # Errors
//
// Every relay error is an ErrorBody:
//
//	{"error": "Method not allowed"}
//	{"error": "rate limited", "status": 429}
//	{"error": "Internal server error", "message": "..."}
package types
