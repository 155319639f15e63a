// Package handlers provides the relay's HTTP handlers.
//
// # Relay
//
// RelayHandler accepts POST {"messages": [...], "model": "...", "apiKey": "..."}
// and forwards the conversation to the upstream chat-completion API with the
// configured max_tokens and temperature. One inbound request makes at most
// one upstream call, and requests rejected during validation make none.
//
// Responses:
//
//	200  upstream body, unchanged
//	400  {"error": "<reason>"}
//	405  {"error": "Method not allowed"}
//	<s>  {"error": "<upstream message>", "status": <s>} for upstream non-2xx
//	500  {"error": "Internal server error", "message": "<redacted detail>"}
//
// OPTIONS always answers 200 with an empty body.
//
// # Upstream Health
//
// UpstreamHealthHandler exposes the provider's passive health counters
// without calling the upstream.
package handlers
