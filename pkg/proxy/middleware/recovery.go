package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"vetchat/relay/pkg/proxy"
	"vetchat/relay/pkg/telemetry/logging"
)

// RecoveryMiddleware converts a handler panic into the standard 500 body.
// The panic value can contain request data, so it goes to the log with the
// stack and never to the caller. If the handler had already started its
// response, nothing more is written.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}

			attrs := append(logging.ContextFields(r.Context()),
				"panic", v,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			slog.ErrorContext(r.Context(), "handler panicked", attrs...)

			if rec.status == 0 {
				_ = proxy.WriteError(rec, proxy.NewInternalError("unexpected server error", nil))
			}
		}()

		next.ServeHTTP(rec, r)
	})
}
