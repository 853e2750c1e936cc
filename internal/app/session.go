package app

import (
	"log/slog"
	"net/http"
)

type contextKey string

const loggerContextKey = contextKey("logger")

// contextGetLogger returns the request-scoped logger placed in the context by
// the logging middleware, falling back to the application logger.
func (app *application) contextGetLogger(r *http.Request) *slog.Logger {
	logger, ok := r.Context().Value(loggerContextKey).(*slog.Logger)
	if !ok {
		return app.logger
	}

	return logger
}

// ownerToken returns the opaque token identifying the current checkout
// attempt. The session ID doubles as the seat lock owner: every lock taken
// from this browser session carries it, and only requests from the same
// session can release or reserve those seats.
func (app *application) ownerToken(r *http.Request) string {
	return app.sessionManager.Token(r.Context())
}
