package journal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// Handler is a slog.Handler that queues every record into a Store.
type Handler struct {
	store  *Store
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewHandler returns a handler writing records at or above level to store.
// A nil level means slog.LevelInfo.
func NewHandler(store *Store, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{store: store, level: level}
}

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		addAttr(fields, nil, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(fields, h.groups, a)
		return true
	})

	attrs, err := json.Marshal(fields)
	if err != nil {
		attrs = []byte("{}")
	}
	h.store.RecordAsync(&Entry{
		Session:   h.store.session,
		Level:     r.Level.String(),
		Message:   r.Message,
		Attrs:     string(attrs),
		Timestamp: r.Time,
	})
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	// Attributes bind to the groups open at this point, not later ones.
	for i := len(h.groups) - 1; i >= 0; i-- {
		attrs = []slog.Attr{{Key: h.groups[i], Value: slog.GroupValue(attrs...)}}
	}
	h2 := *h
	h2.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string(nil), h.groups...), name)
	return &h2
}

// addAttr stores a under its dotted group path. Errors and other values
// without a JSON form are stored as their string.
func addAttr(fields map[string]any, groups []string, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Key == "" && v.Kind() != slog.KindGroup {
		return
	}
	if v.Kind() == slog.KindGroup {
		sub := groups
		if a.Key != "" {
			sub = append(append([]string(nil), groups...), a.Key)
		}
		for _, ga := range v.Group() {
			addAttr(fields, sub, ga)
		}
		return
	}

	key := a.Key
	for i := len(groups) - 1; i >= 0; i-- {
		key = groups[i] + "." + key
	}
	switch v.Kind() {
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			fields[key] = err.Error()
			return
		}
		if _, err := json.Marshal(v.Any()); err != nil {
			fields[key] = v.String()
			return
		}
		fields[key] = v.Any()
	case slog.KindTime, slog.KindDuration:
		fields[key] = v.String()
	default:
		fields[key] = v.Any()
	}
}

// Tee fans each record out to every handler. A record is enabled when any
// handler wants it; each handler still filters for itself.
func Tee(handlers ...slog.Handler) slog.Handler {
	return tee(handlers)
}

type tee []slog.Handler

func (t tee) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t tee) WithGroup(name string) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
