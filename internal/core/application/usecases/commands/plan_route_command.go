package commands

import (
	"errors"
	"fmt"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrPlanRouteCommandIsNotConstructed = errors.New(
	"PlanRouteCommand must be created via NewPlanRouteCommand constructor",
)

// PlanRouteCommand puts a set of orders on a route and sequences them.
// The set replaces the route's current orders: orders attached before and not
// listed again are detached.
type PlanRouteCommand struct { //nolint:recvcheck //using for validation
	routeID  kernel.UUID
	orderIDs []kernel.UUID

	guard guard.ConstructorGuard
}

// NewPlanRouteCommand requires at least one order and rejects duplicates.
func NewPlanRouteCommand(routeID kernel.UUID, orderIDs []kernel.UUID) (PlanRouteCommand, error) {
	if err := routeID.Validate(); err != nil {
		return PlanRouteCommand{}, err
	}
	if len(orderIDs) == 0 {
		return PlanRouteCommand{}, errs.NewValueIsRequiredError("orderIDs")
	}

	seen := make(map[kernel.UUID]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return PlanRouteCommand{}, errs.NewValueIsInvalidErrorWithCause("orderIDs", err)
		}
		if _, ok := seen[id]; ok {
			return PlanRouteCommand{}, errs.NewValueIsInvalidErrorWithCause("orderIDs",
				fmt.Errorf("order %s is listed twice", id))
		}
		seen[id] = struct{}{}
	}

	return PlanRouteCommand{
		routeID:  routeID,
		orderIDs: append([]kernel.UUID(nil), orderIDs...),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c PlanRouteCommand) Validate() error {
	return c.guard.Validate(ErrPlanRouteCommandIsNotConstructed)
}

func (c PlanRouteCommand) RouteID() kernel.UUID { return c.routeID }

func (c PlanRouteCommand) OrderIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.orderIDs...)
}
