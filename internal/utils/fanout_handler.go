package utils

import (
	"context"
	"log/slog"
)

// FanoutHandler is a slog.Handler that duplicates every record to a set of
// child handlers. Used to log to the terminal and the session log file at once.
type FanoutHandler struct {
	children []slog.Handler
}

func NewFanoutHandler(children ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{children: children}
}

func (h *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, child := range h.children {
		if child.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	// Keep going on child errors so one broken sink can't silence the rest.
	var err error
	for _, child := range h.children {
		if !child.Enabled(ctx, r.Level) {
			continue
		}
		if e := child.Handle(ctx, r.Clone()); e != nil {
			err = e
		}
	}
	return err
}

func (h *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	children := make([]slog.Handler, len(h.children))
	for i, child := range h.children {
		children[i] = child.WithAttrs(attrs)
	}
	return NewFanoutHandler(children...)
}

func (h *FanoutHandler) WithGroup(name string) slog.Handler {
	children := make([]slog.Handler, len(h.children))
	for i, child := range h.children {
		children[i] = child.WithGroup(name)
	}
	return NewFanoutHandler(children...)
}
