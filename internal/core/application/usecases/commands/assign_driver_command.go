package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrAssignDriverCommandIsNotConstructed = errors.New(
	"AssignDriverCommand must be created via NewAssignDriverCommand constructor",
)

// AssignDriverCommand puts a driver on a Pending route.
type AssignDriverCommand struct { //nolint:recvcheck //using for validation
	routeID  kernel.UUID
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAssignDriverCommand(routeID kernel.UUID, driverID kernel.UUID) (AssignDriverCommand, error) {
	var errDriver error
	if driverID.IsZero() {
		errDriver = errs.NewValueIsRequiredError("driver required")
	}
	if err := errors.Join(routeID.Validate(), errDriver); err != nil {
		return AssignDriverCommand{}, err
	}

	return AssignDriverCommand{routeID: routeID, driverID: driverID, guard: guard.NewConstructorGuard()}, nil
}

func (c AssignDriverCommand) Validate() error {
	return c.guard.Validate(ErrAssignDriverCommandIsNotConstructed)
}

func (c AssignDriverCommand) RouteID() kernel.UUID  { return c.routeID }
func (c AssignDriverCommand) DriverID() kernel.UUID { return c.driverID }
