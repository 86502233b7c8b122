package eventhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/ddd"
	"lastmile/internal/pkg/metrics"
)

// RegisterDeliveryReactions wires the reactions that keep orders and routes
// consistent:
//   - RouteStarted moves the route's Pending orders InTransit
//   - OrderDelivered, OrderCancelled and OrderFailed try to complete the route
//   - RouteCancelled detaches the route's Pending orders
func RegisterDeliveryReactions(
	r *Registry,
	completion services.RouteCompletionService,
	m *metrics.Metrics,
	logger *slog.Logger,
) {
	if logger == nil {
		logger = slog.Default()
	}

	r.Register(route.StartedEventName, NewRouteStartedHandler())
	r.Register(route.CancelledEventName, NewRouteCancelledHandler())

	terminal := NewOrderTerminalHandler(completion, m, logger)
	r.Register(order.DeliveredEventName, terminal)
	r.Register(order.CancelledEventName, terminal)
	r.Register(order.FailedEventName, terminal)
}

// RouteStartedHandler puts every Pending order of a started route in transit.
// Orders that already left Pending, for example cancelled ones, are skipped.
type RouteStartedHandler struct{}

func NewRouteStartedHandler() RouteStartedHandler {
	return RouteStartedHandler{}
}

func (h RouteStartedHandler) Handle(ctx context.Context, uow ports.UnitOfWork, event ddd.DomainEvent) error {
	started, ok := event.(route.RouteStarted)
	if !ok {
		return unexpectedEvent(event)
	}

	orders, err := uow.OrderRepository().GetByRouteID(ctx, started.RouteID)
	if err != nil {
		return err
	}

	for _, o := range orders {
		if o.Status() != order.Pending {
			continue
		}
		if err = o.MarkAsInProgress(); err != nil {
			return err
		}
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

// RouteCancelledHandler releases the Pending orders of a cancelled route so
// they can be planned on another route.
type RouteCancelledHandler struct{}

func NewRouteCancelledHandler() RouteCancelledHandler {
	return RouteCancelledHandler{}
}

func (h RouteCancelledHandler) Handle(ctx context.Context, uow ports.UnitOfWork, event ddd.DomainEvent) error {
	cancelled, ok := event.(route.RouteCancelled)
	if !ok {
		return unexpectedEvent(event)
	}

	orders, err := uow.OrderRepository().GetByRouteID(ctx, cancelled.RouteID)
	if err != nil {
		return err
	}

	for _, o := range orders {
		if o.Status() != order.Pending {
			continue
		}
		if err = o.DetachFromRoute(); err != nil {
			return err
		}
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

// OrderTerminalHandler asks the completion service to close the route of an
// order that just reached a terminal status.
type OrderTerminalHandler struct {
	completion services.RouteCompletionService
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewOrderTerminalHandler(
	completion services.RouteCompletionService,
	m *metrics.Metrics,
	logger *slog.Logger,
) OrderTerminalHandler {
	return OrderTerminalHandler{
		completion: completion,
		metrics:    m,
		logger:     logger.With("component", "route_completion"),
	}
}

func (h OrderTerminalHandler) Handle(ctx context.Context, uow ports.UnitOfWork, event ddd.DomainEvent) error {
	terminal, ok := event.(order.TerminalEvent)
	if !ok {
		return unexpectedEvent(event)
	}

	routeID := terminal.TerminatedRouteID()
	if routeID == nil {
		return nil
	}

	completed, err := h.completion.TryCompleteRoute(ctx, uow, *routeID)
	if err != nil {
		return err
	}
	if completed {
		h.metrics.RecordRouteCompleted()
		h.logger.InfoContext(ctx, "Route completed",
			"route_id", routeID.String(),
			"last_order_id", terminal.TerminatedOrderID().String(),
		)
	}
	return nil
}

func unexpectedEvent(event ddd.DomainEvent) error {
	return fmt.Errorf("unexpected event %s of type %T", event.EventName(), event)
}

