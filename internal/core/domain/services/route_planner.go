package services

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/routing"
	"lastmile/internal/pkg/errs"
)

// ErrNothingToPlan is returned when a route has no orders to sequence.
var ErrNothingToPlan = errs.NewValueIsRequiredError("orders to plan")

// RoutePlanner applies a stop sequence computed by a route calculator to a route
// and to the orders that make up its stops.
type RoutePlanner struct{}

// NewRoutePlanner creates a RoutePlanner.
func NewRoutePlanner() RoutePlanner {
	return RoutePlanner{}
}

// Waypoints converts orders into calculator input, one waypoint per order at its
// delivery location.
func (p RoutePlanner) Waypoints(orders []*order.Order) ([]routing.Waypoint, error) {
	if len(orders) == 0 {
		return nil, ErrNothingToPlan
	}

	waypoints := make([]routing.Waypoint, 0, len(orders))
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, err
		}
		w, err := routing.NewWaypoint(o.ID(), o.Location())
		if err != nil {
			return nil, err
		}
		waypoints = append(waypoints, w)
	}
	return waypoints, nil
}

// Apply attaches every order to r at the position given by ordered and replaces
// the stop list of r. Orders previously attached to r that are not in orders are
// detached; those that were cancelled or failed before the route started are
// released. Every planned order must be Pending and the route must be Pending.
//
// Checks run before anything is changed so a rejected plan leaves all aggregates
// as they were.
func (p RoutePlanner) Apply(
	r *route.Route,
	orders []*order.Order,
	previouslyAttached []*order.Order,
	ordered routing.OrderedRoute,
	plannedAt time.Time,
) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Status() != route.Pending {
		return errs.NewOperationRejectedError("route", r.Status(), route.OperationPlan,
			"stops can only change while pending")
	}

	ids := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		if o.Status() != order.Pending {
			return errs.NewOperationRejectedError("order", o.Status(), order.OperationPlan,
				fmt.Sprintf("order %s is not pending and cannot be planned", o.ID()))
		}
		ids = append(ids, o.ID())
	}
	if err := ordered.Matches(ids); err != nil {
		return err
	}

	var detach, release []*order.Order
	for _, prev := range previouslyAttached {
		if slices.ContainsFunc(ids, prev.ID().IsEqual) {
			continue
		}
		switch prev.Status() {
		case order.Pending:
			detach = append(detach, prev)
		case order.Cancelled, order.Failed:
			release = append(release, prev)
		default:
			return errs.NewOperationRejectedError("order", prev.Status(), order.OperationDetach,
				fmt.Sprintf("order %s cannot leave route %s", prev.ID(), r.ID()))
		}
	}

	var changeErrs []error
	for _, prev := range detach {
		changeErrs = append(changeErrs, prev.DetachFromRoute())
	}
	for _, prev := range release {
		changeErrs = append(changeErrs, prev.ReleaseFromRoute())
	}
	for _, o := range orders {
		seq, _ := ordered.SequenceOf(o.ID())
		changeErrs = append(changeErrs, o.AssignToRoute(r.ID(), seq))
	}
	if err := errors.Join(changeErrs...); err != nil {
		return err
	}

	return r.SetOrderedWaypoints(ordered, ids, plannedAt)
}
