package commands

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrCreateRouteCommandIsNotConstructed = errors.New(
	"CreateRouteCommand must be created via NewCreateRouteCommand constructor",
)

// CreateRouteCommand creates an empty Pending route for the orders of a batch.
type CreateRouteCommand struct { //nolint:recvcheck //using for validation
	routeID       kernel.UUID
	batchID       kernel.UUID
	zoneID        *kernel.UUID
	scheduledDate time.Time

	guard guard.ConstructorGuard
}

func NewCreateRouteCommand(
	routeID kernel.UUID,
	batchID kernel.UUID,
	zoneID *kernel.UUID,
	scheduledDate time.Time,
) (CreateRouteCommand, error) {
	var errDate error
	if scheduledDate.IsZero() {
		errDate = errs.NewValueIsRequiredError("scheduledDate")
	}
	var errZone error
	if zoneID != nil {
		errZone = zoneID.Validate()
	}
	if err := errors.Join(routeID.Validate(), batchID.Validate(), errZone, errDate); err != nil {
		return CreateRouteCommand{}, err
	}

	cmd := CreateRouteCommand{
		routeID:       routeID,
		batchID:       batchID,
		scheduledDate: scheduledDate,
		guard:         guard.NewConstructorGuard(),
	}
	if zoneID != nil {
		zone := *zoneID
		cmd.zoneID = &zone
	}
	return cmd, nil
}

func (c CreateRouteCommand) Validate() error {
	return c.guard.Validate(ErrCreateRouteCommandIsNotConstructed)
}

func (c CreateRouteCommand) RouteID() kernel.UUID     { return c.routeID }
func (c CreateRouteCommand) BatchID() kernel.UUID     { return c.batchID }
func (c CreateRouteCommand) ScheduledDate() time.Time { return c.scheduledDate }

func (c CreateRouteCommand) ZoneID() *kernel.UUID {
	if c.zoneID == nil {
		return nil
	}
	zone := *c.zoneID
	return &zone
}
