package logging

import (
	"context"
	"log/slog"
)

// redactHandler wraps a slog.Handler so every record is redacted before
// it is written. Sitting at the handler level catches records from the
// default logger and all loggers derived from it, not just calls made
// through this package.
type redactHandler struct {
	inner    slog.Handler
	redactor *Redactor
}

func newRedactHandler(inner slog.Handler, redactor *Redactor) *redactHandler {
	return &redactHandler{
		inner:    inner,
		redactor: redactor,
	}
}

// Enabled reports whether the wrapped handler handles the given level.
func (h *redactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle redacts the record's message and attributes, then delegates.
func (h *redactHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.redactor.RedactString(rec.Message), rec.PC)

	rec.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(h.redactor.RedactAttr(attr))
		return true
	})

	return h.inner.Handle(ctx, out)
}

// WithAttrs redacts the pre-bound attributes before delegating, so
// values bound with Logger.With are masked too.
func (h *redactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		redacted[i] = h.redactor.RedactAttr(attr)
	}

	return &redactHandler{
		inner:    h.inner.WithAttrs(redacted),
		redactor: h.redactor,
	}
}

// WithGroup delegates group handling to the wrapped handler.
func (h *redactHandler) WithGroup(name string) slog.Handler {
	return &redactHandler{
		inner:    h.inner.WithGroup(name),
		redactor: h.redactor,
	}
}
