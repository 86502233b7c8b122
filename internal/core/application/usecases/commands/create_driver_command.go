package commands

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrCreateDriverCommandIsNotConstructed = errors.New(
	"CreateDriverCommand must be created via NewCreateDriverCommand constructor",
)

// CreateDriverCommand registers a delivery driver, optionally bound to a zone.
type CreateDriverCommand struct { //nolint:recvcheck //using for validation
	driverID kernel.UUID
	name     string
	zoneID   *kernel.UUID

	guard guard.ConstructorGuard
}

func NewCreateDriverCommand(driverID kernel.UUID, name string, zoneID *kernel.UUID) (CreateDriverCommand, error) {
	var errName error
	name = strings.TrimSpace(name)
	if name == "" {
		errName = errs.NewValueIsRequiredError("name")
	}
	var errZone error
	if zoneID != nil {
		errZone = zoneID.Validate()
	}
	if err := errors.Join(driverID.Validate(), errName, errZone); err != nil {
		return CreateDriverCommand{}, err
	}

	cmd := CreateDriverCommand{driverID: driverID, name: name, guard: guard.NewConstructorGuard()}
	if zoneID != nil {
		zone := *zoneID
		cmd.zoneID = &zone
	}
	return cmd, nil
}

func (c CreateDriverCommand) Validate() error {
	return c.guard.Validate(ErrCreateDriverCommandIsNotConstructed)
}

func (c CreateDriverCommand) DriverID() kernel.UUID { return c.driverID }
func (c CreateDriverCommand) Name() string          { return c.name }

func (c CreateDriverCommand) ZoneID() *kernel.UUID {
	if c.zoneID == nil {
		return nil
	}
	zone := *c.zoneID
	return &zone
}
