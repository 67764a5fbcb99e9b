// Package logging wires structured logging (log/slog) the same way
// across the codec core and the JPIP server: a context-aware handler
// that threads request-scoped attributes through slog.Group values
// attached via AppendCtx, with optional file rotation through
// lumberjack for long-running daemons.
package logging

import (
	"context"
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey struct{}

// Logger returns a slog.Logger writing to w at the given level, as
// either human-readable text or JSON. Attributes attached to a
// context with AppendCtx are merged into every record logged with
// that context.
func Logger(w io.Writer, json bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{Handler: handler})
}

// RotatingWriter returns an io.Writer that rotates the named log file
// by size, keeping a bounded number of compressed backups, using the
// same lumberjack defaults a long-running jpipd server would want.
func RotatingWriter(path string, maxSizeMB, maxBackups, maxAgeDays int) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
}

// AppendCtx attaches a slog attribute (typically a slog.Group) to ctx
// so that every log record made with that context includes it,
// without requiring every call site to repeat it.
func AppendCtx(ctx context.Context, attr slog.Attr) context.Context {
	existing, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	attrs := append(append([]slog.Attr(nil), existing...), attr)
	return context.WithValue(ctx, ctxKey{}, attrs)
}

// ctxHandler wraps a slog.Handler and injects any attributes attached
// to the record's context via AppendCtx.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithGroup(name)}
}
