package commands

import (
	"context"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/routing"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"
)

// DefaultRoutingTimeout bounds the route calculator call when the handler is
// created with a non-positive timeout.
const DefaultRoutingTimeout = 10 * time.Second

// PlanRouteCommandHandler sequences the orders of a route with a RouteCalculator
// starting from the depot.
//
// Example:
//
//	handler := NewPlanRouteCommandHandler(uowFactory, calculator, depot, 5*time.Second)
//	stops, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrRouting) {
//	    // the calculator failed; route and orders are unchanged
//	}
type PlanRouteCommandHandler struct {
	uowFactory UoWFactory
	calculator ports.RouteCalculator
	planner    services.RoutePlanner
	depot      kernel.GeoPoint
	timeout    time.Duration
}

func NewPlanRouteCommandHandler(
	uowFactory UoWFactory,
	calculator ports.RouteCalculator,
	depot kernel.GeoPoint,
	timeout time.Duration,
) PlanRouteCommandHandler {
	if timeout <= 0 {
		timeout = DefaultRoutingTimeout
	}
	return PlanRouteCommandHandler{
		uowFactory: uowFactory,
		calculator: calculator,
		planner:    services.NewRoutePlanner(),
		depot:      depot,
		timeout:    timeout,
	}
}

// Handle loads the route and the listed orders, asks the calculator for a visiting
// order and applies it. The calculator runs before any aggregate is changed; when
// it fails or times out nothing is persisted.
//
// Every listed order must belong to the route's batch, be Pending and not sit on
// another route.
func (h PlanRouteCommandHandler) Handle(ctx context.Context, cmd PlanRouteCommand) (routing.OrderedRoute, error) {
	if err := cmd.Validate(); err != nil {
		return routing.OrderedRoute{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return routing.OrderedRoute{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	routeRepo := uow.RouteRepository()
	orderRepo := uow.OrderRepository()

	r, err := routeRepo.Get(ctx, cmd.RouteID())
	if err != nil {
		return routing.OrderedRoute{}, err
	}
	if r.Status() != route.Pending {
		return routing.OrderedRoute{}, errs.NewOperationRejectedError("route", r.Status(), route.OperationPlan,
			"stops can only change while pending")
	}

	orders := make([]*order.Order, 0, len(cmd.OrderIDs()))
	for _, id := range cmd.OrderIDs() {
		o, err := orderRepo.Get(ctx, id)
		if err != nil {
			return routing.OrderedRoute{}, err
		}
		if err = checkPlannable(r, o); err != nil {
			return routing.OrderedRoute{}, err
		}
		orders = append(orders, o)
	}

	attached, err := orderRepo.GetByRouteID(ctx, r.ID())
	if err != nil {
		return routing.OrderedRoute{}, err
	}

	waypoints, err := h.planner.Waypoints(orders)
	if err != nil {
		return routing.OrderedRoute{}, err
	}

	ordered, err := h.calculate(ctx, waypoints)
	if err != nil {
		return routing.OrderedRoute{}, err
	}

	if err = h.planner.Apply(r, orders, attached, ordered, time.Now()); err != nil {
		return routing.OrderedRoute{}, err
	}

	for _, o := range attached {
		if err = orderRepo.Update(ctx, o); err != nil {
			return routing.OrderedRoute{}, err
		}
	}
	for _, o := range orders {
		if err = orderRepo.Update(ctx, o); err != nil {
			return routing.OrderedRoute{}, err
		}
	}
	if err = routeRepo.Update(ctx, r); err != nil {
		return routing.OrderedRoute{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return routing.OrderedRoute{}, err
	}

	return ordered, nil
}

func (h PlanRouteCommandHandler) calculate(ctx context.Context, waypoints []routing.Waypoint) (routing.OrderedRoute, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	ordered, err := h.calculator.CalculateOrder(ctx, h.depot, waypoints)
	if err != nil {
		return routing.OrderedRoute{}, err
	}

	ids := make([]kernel.UUID, len(waypoints))
	for i, w := range waypoints {
		ids[i] = w.ID()
	}
	if err = ordered.Matches(ids); err != nil {
		return routing.OrderedRoute{}, errs.NewRoutingErrorWithCause("calculator returned a different waypoint set", err)
	}
	return ordered, nil
}

func checkPlannable(r *route.Route, o *order.Order) error {
	if !o.BatchID().IsEqual(r.BatchID()) {
		return errs.NewValueIsInvalidErrorWithCause("orderIDs",
			fmt.Errorf("order %s belongs to batch %s, route %s delivers batch %s", o.ID(), o.BatchID(), r.ID(), r.BatchID()))
	}
	if routeID := o.RouteID(); routeID != nil && !routeID.IsEqual(r.ID()) {
		return errs.NewOperationRejectedError("order", o.Status(), order.OperationPlan,
			fmt.Sprintf("order %s is planned on route %s", o.ID(), routeID))
	}
	return nil
}
