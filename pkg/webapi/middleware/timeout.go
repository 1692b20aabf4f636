package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"brightbooks-hq/ledgerport/pkg/telemetry/logging"
	"brightbooks-hq/ledgerport/pkg/webapi"
)

// timeoutWriter serializes response access between the handler
// goroutine and the timeout path. Once the deadline response has gone
// out, handler writes are discarded.
type timeoutWriter struct {
	mu          sync.Mutex
	w           http.ResponseWriter
	wroteHeader bool
	timedOut    bool
}

func (tw *timeoutWriter) Header() http.Header {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		// Hand late writers a detached copy so their header edits
		// cannot touch the response that was already sent.
		return tw.w.Header().Clone()
	}
	return tw.w.Header()
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.wroteHeader = true
	return tw.w.Write(b)
}

// sendTimeout writes the 504 body unless the handler already started a
// response, in which case the connection is left to die with it.
func (tw *timeoutWriter) sendTimeout() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.wroteHeader {
		tw.timedOut = true
		return false
	}
	tw.timedOut = true
	webapi.WriteError(tw.w, http.StatusGatewayTimeout, webapi.ErrorResponse{
		Error:   webapi.CodeTimeout,
		Message: "request took too long to complete",
	})
	return true
}

// TimeoutMiddleware enforces a per-request deadline. When it expires
// the client gets a 504 with a JSON error body, the request context is
// cancelled so in-flight page fetches stop, and anything the handler
// writes afterwards is discarded. Panics inside the handler goroutine
// are re-raised on the serving goroutine so recovery still sees them.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{w: w}
			done := make(chan struct{})
			panicChan := make(chan any, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicChan <- p
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case p := <-panicChan:
				panic(p)

			case <-done:

			case <-ctx.Done():
				if ctx.Err() != context.DeadlineExceeded {
					return
				}
				if tw.sendTimeout() {
					slog.ErrorContext(r.Context(), "request timed out",
						"request_id", logging.GetRequestID(r.Context()),
						"method", r.Method,
						"path", r.URL.Path,
						"timeout", timeout.String(),
					)
				}
			}
		})
	}
}
