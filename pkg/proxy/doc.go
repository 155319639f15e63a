// Package proxy contains the request and response plumbing for the chat
// relay: body decoding, credential resolution, the error taxonomy, and
// response writers. The HTTP handlers live in the handlers subpackage.
//
// # Error Taxonomy
//
// Every failure maps to one Kind and a fixed body shape:
//
//	method_not_allowed  405  {"error": "Method not allowed"}
//	bad_request         400  {"error": "<reason>"}
//	upstream_error      <s>  {"error": "<upstream message>", "status": <s>}
//	internal_error      500  {"error": "Internal server error", "message": "<detail>"}
//
// Internal error details are redacted before they leave the process.
//
// # Credentials
//
// Credentials resolves the upstream key in one of two modes. In client mode
// the key comes from the body's apiKey field (or a bearer header) and must
// carry the configured prefix. In server mode the relay's own key is used
// and anything the caller sends is ignored.
package proxy
