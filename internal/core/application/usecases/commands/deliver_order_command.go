package commands

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrDeliverOrderCommandIsNotConstructed = errors.New(
	"DeliverOrderCommand must be created via NewDeliverOrderCommand constructor",
)

// DeliverOrderCommand records the proof of delivery for an order in transit.
type DeliverOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	driverID kernel.UUID
	location kernel.GeoPoint
	comments string
	photoRef string

	guard guard.ConstructorGuard
}

// NewDeliverOrderCommand creates the command. comments and photoRef are optional.
func NewDeliverOrderCommand(
	orderID kernel.UUID,
	driverID kernel.UUID,
	location kernel.GeoPoint,
	comments string,
	photoRef string,
) (DeliverOrderCommand, error) {
	var errDriver error
	if err := driverID.Validate(); err != nil {
		errDriver = errs.NewValueIsRequiredErrorWithCause("driverID", err)
	}
	if err := errors.Join(orderID.Validate(), errDriver, location.Validate()); err != nil {
		return DeliverOrderCommand{}, err
	}

	return DeliverOrderCommand{
		orderID:  orderID,
		driverID: driverID,
		location: location,
		comments: strings.TrimSpace(comments),
		photoRef: strings.TrimSpace(photoRef),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c DeliverOrderCommand) Validate() error {
	return c.guard.Validate(ErrDeliverOrderCommandIsNotConstructed)
}

func (c DeliverOrderCommand) OrderID() kernel.UUID      { return c.orderID }
func (c DeliverOrderCommand) DriverID() kernel.UUID     { return c.driverID }
func (c DeliverOrderCommand) Location() kernel.GeoPoint { return c.location }
func (c DeliverOrderCommand) Comments() string          { return c.comments }
func (c DeliverOrderCommand) PhotoRef() string          { return c.photoRef }
