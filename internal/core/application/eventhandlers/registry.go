// Package eventhandlers contains the in-process reactions to domain events and
// the registry that dispatches events to them.
//
// Handlers run synchronously inside UnitOfWork.Commit with the committing unit
// of work. They load and change aggregates through its repositories; anything
// they register for a write is persisted by the same commit, and events they
// cause are dispatched in a following round.
package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/ddd"
)

// Handler reacts to one kind of domain event.
type Handler interface {
	Handle(ctx context.Context, uow ports.UnitOfWork, event ddd.DomainEvent) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, uow ports.UnitOfWork, event ddd.DomainEvent) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, uow ports.UnitOfWork, event ddd.DomainEvent) error {
	return f(ctx, uow, event)
}

// Registry maps event names to handlers. It implements ports.DomainEventDispatcher.
// Registration is not synchronized; finish it before the first commit.
type Registry struct {
	handlers map[string][]Handler
	logger   *slog.Logger
}

var _ ports.DomainEventDispatcher = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		handlers: make(map[string][]Handler),
		logger:   logger.With("component", "event_dispatcher"),
	}
}

// Register appends h to the handlers of eventName. Handlers of one event run in
// registration order.
func (r *Registry) Register(eventName string, h Handler) {
	r.handlers[eventName] = append(r.handlers[eventName], h)
}

// Handlers returns how many handlers are registered for eventName.
func (r *Registry) Handlers(eventName string) int {
	return len(r.handlers[eventName])
}

// Dispatch runs every handler registered for the event. The first error stops
// the dispatch and is returned, which fails the commit. Events without handlers
// are ignored.
func (r *Registry) Dispatch(ctx context.Context, uow ports.UnitOfWork, event ddd.DomainEvent) error {
	handlers := r.handlers[event.EventName()]
	if len(handlers) == 0 {
		return nil
	}

	r.logger.DebugContext(ctx, "Dispatching domain event",
		"event", event.EventName(),
		"event_id", event.EventID().String(),
		"aggregate_id", event.AggregateID(),
		"handlers", len(handlers),
	)

	for i, h := range handlers {
		if err := h.Handle(ctx, uow, event); err != nil {
			return fmt.Errorf("handler %d of %s: %w", i+1, event.EventName(), err)
		}
	}
	return nil
}
