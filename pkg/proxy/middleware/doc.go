// Package middleware provides HTTP middleware for the relay server.
//
// # Middleware Chain
//
// The server composes the chain with Chain, outermost first:
//
//	handler = Chain(mux,
//	    RecoveryMiddleware,
//	    RequestIDMiddleware,
//	    LoggingMiddleware,
//	    CORSMiddleware(corsConfig),
//	    RateLimitMiddleware(limiter), // relay routes only, when enabled
//	)
//
// Recovery sits outside everything so a panic anywhere still produces the
// relay's 500 body. CORS runs before the rate limiter so throttled responses
// still carry CORS headers and browsers can read them.
//
// There is no timeout middleware. The upstream deadline is enforced by the
// provider through the request context, and the server's write timeout
// bounds everything else.
package middleware
