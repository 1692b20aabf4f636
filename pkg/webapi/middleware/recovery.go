package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"brightbooks-hq/ledgerport/pkg/telemetry/logging"
	"brightbooks-hq/ledgerport/pkg/webapi"
)

// RecoveryMiddleware converts handler panics into 500 responses. The
// panic is logged with its stack trace; the client sees only a generic
// error body.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", logging.GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				webapi.WriteError(w, http.StatusInternalServerError, webapi.ErrorResponse{
					Error:   webapi.CodeInternalError,
					Message: "an internal error occurred",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
