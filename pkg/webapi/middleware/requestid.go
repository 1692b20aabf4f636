package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"brightbooks-hq/ledgerport/pkg/telemetry/logging"
)

// RequestIDHeader is the HTTP header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags each request with a correlation ID. A client
// supplied X-Request-ID is kept; otherwise a random one is generated.
// The ID rides the request context under the logging package's key, so
// every log line and audit event downstream can carry it, and is echoed
// in the response headers.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = generateRequestID()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// generateRequestID returns 16 random bytes, hex encoded.
func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "untracked"
	}
	return hex.EncodeToString(b)
}
