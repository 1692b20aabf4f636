package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// RealmIDKey is the context key for QuickBooks realm IDs.
	RealmIDKey contextKey = "realm_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRealmID adds a realm ID to the context.
func WithRealmID(ctx context.Context, realmID string) context.Context {
	return context.WithValue(ctx, RealmIDKey, realmID)
}

// GetRealmID retrieves the realm ID from the context.
func GetRealmID(ctx context.Context) string {
	if realmID, ok := ctx.Value(RealmIDKey).(string); ok {
		return realmID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for Logger.With.
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	if realmID := GetRealmID(ctx); realmID != "" {
		fields = append(fields, "realm_id", realmID)
	}

	return fields
}

// FromContext returns the default logger annotated with the request ID
// and realm ID carried by the context, when present.
func FromContext(ctx context.Context) *slog.Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return slog.Default()
	}
	return slog.Default().With(fields...)
}
