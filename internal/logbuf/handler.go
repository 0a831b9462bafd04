package logbuf

import (
	"context"
	"log/slog"
)

// Handler is an slog.Handler that captures every record into a Buffer and
// delegates to an inner handler for normal output.
type Handler struct {
	inner slog.Handler
	buf   *Buffer
	attrs []slog.Attr
}

// NewHandler tees log records into buf and inner.
func NewHandler(inner slog.Handler, buf *Buffer) *Handler {
	return &Handler{inner: inner, buf: buf}
}

// Enabled always reports true so the buffer sees every level; the inner
// handler applies its own level filter in Handle.
func (h *Handler) Enabled(context.Context, slog.Level) bool { return true }

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	for _, a := range h.attrs {
		attrs[a.Key] = attrValue(a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = attrValue(a.Value)
		return true
	})
	if len(attrs) == 0 {
		attrs = nil
	}

	h.buf.Append(Entry{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
		Attrs:   attrs,
	})

	if h.inner.Enabled(ctx, r.Level) {
		return h.inner.Handle(ctx, r)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		inner: h.inner.WithAttrs(attrs),
		buf:   h.buf,
		attrs: append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), buf: h.buf, attrs: h.attrs}
}

// attrValue converts slog values to JSON-safe types; errors become strings
// so they don't serialize to {}.
func attrValue(v slog.Value) any {
	v = v.Resolve()
	raw := v.Any()
	if err, ok := raw.(error); ok {
		return err.Error()
	}
	return raw
}
