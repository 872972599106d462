package logging

import (
	"context"
	"log/slog"

	"github.com/OCAP2/objectives/internal/mission"
)

// ContextProvider is a function that returns dynamic context attributes.
type ContextProvider func() []slog.Attr

// MissionContext reports the current map and skill level on every record.
func MissionContext(mc *mission.Context) ContextProvider {
	return func() []slog.Attr {
		if mc == nil {
			return nil
		}
		attrs := []slog.Attr{
			slog.String("map", mc.Map()),
			slog.Int("skill", mc.Skill()),
		}
		if prev := mc.PreviousMap(); prev != mission.NoMap {
			attrs = append(attrs, slog.String("previousMap", prev))
		}
		if mc.Restored() {
			attrs = append(attrs, slog.Bool("restored", true))
		}
		return attrs
	}
}

// ContextHandler wraps another handler and injects dynamic context attributes.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

// NewContextHandler creates a handler that adds dynamic context to each record.
func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{
		inner:    inner,
		provider: provider,
	}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		r.AddAttrs(h.provider()...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{
		inner:    h.inner.WithAttrs(attrs),
		provider: h.provider,
	}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{
		inner:    h.inner.WithGroup(name),
		provider: h.provider,
	}
}
