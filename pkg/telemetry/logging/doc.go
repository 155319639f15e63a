// Package logging configures log/slog for the relay.
//
// Loggers write JSON or text through a RedactingHandler, which masks API
// keys (sk-...), bearer tokens, registered secret values, and any attribute
// whose key names a credential. The level lives in a slog.LevelVar so a
// configuration reload can change it without rebuilding handlers.
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Slog())
//
//	slog.Info("upstream call", "authorization", "Bearer sk-abc123")
//	// {"msg":"upstream call","authorization":"Bear***"}
//
// The same Redactor masks credentials in error messages the relay returns to
// callers.
package logging
