package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrStartRouteCommandIsNotConstructed = errors.New(
	"StartRouteCommand must be created via NewStartRouteCommand constructor",
)

// StartRouteCommand sends a Pending route with a driver on its way.
type StartRouteCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

func NewStartRouteCommand(routeID kernel.UUID) (StartRouteCommand, error) {
	if err := routeID.Validate(); err != nil {
		return StartRouteCommand{}, err
	}
	return StartRouteCommand{routeID: routeID, guard: guard.NewConstructorGuard()}, nil
}

func (c StartRouteCommand) Validate() error {
	return c.guard.Validate(ErrStartRouteCommandIsNotConstructed)
}

func (c StartRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}
