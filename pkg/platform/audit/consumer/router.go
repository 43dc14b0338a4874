// Package consumer reads the audit topic and dispatches each event to a
// handler chosen by its category.
package consumer

import (
	"context"
	"log/slog"

	audit "polizaexpress/pkg/platform/audit"
)

// Handler handles one decoded audit event.
type Handler interface {
	Handle(ctx context.Context, event audit.Event) error
}

// Router dispatches events to category-specific handlers.
type Router struct {
	handlers map[audit.EventCategory]Handler
	fallback Handler
	logger   *slog.Logger
}

// NewRouter creates a category router with an optional fallback handler.
func NewRouter(logger *slog.Logger, fallback Handler) *Router {
	return &Router{
		handlers: make(map[audit.EventCategory]Handler),
		fallback: fallback,
		logger:   logger,
	}
}

// Register adds a handler for a category.
func (r *Router) Register(category audit.EventCategory, handler Handler) {
	r.handlers[category] = handler
}

// Handle routes the event to its category handler.
func (r *Router) Handle(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}
	handler, ok := r.handlers[category]
	if !ok {
		if r.fallback != nil {
			return r.fallback.Handle(ctx, event)
		}
		r.logger.WarnContext(ctx, "no handler for audit category, skipping event",
			"category", category,
			"action", event.Action,
		)
		return nil // commit to avoid redelivery
	}
	return handler.Handle(ctx, event)
}
