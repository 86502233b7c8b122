package commands

import (
	"errors"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// OrderLine is one requested product of a new order.
type OrderLine struct {
	ProductID kernel.UUID
	Quantity  int
}

// CreateOrderCommand represents a request to register a customer order for delivery.
// The order is reserved on BatchID, or on the most recently opened batch when
// BatchID is nil.
//
// Example:
//
//	address, _ := order.NewAddress("Alexanderplatz 1", "Berlin", "10178", "DE")
//	location, _ := kernel.NewGeoPoint(52.5219, 13.4132)
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), nil, customerID, address, location, day,
//	    []OrderLine{{ProductID: productID, Quantity: 2}})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID               kernel.UUID
	batchID               *kernel.UUID
	customerID            kernel.UUID
	address               order.Address
	location              kernel.GeoPoint
	scheduledDeliveryDate time.Time
	lines                 []OrderLine

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new delivery order.
// Every line must have a product and a positive quantity; an order may be created
// without lines and filled through AddOrderItemCommand.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	batchID *kernel.UUID,
	customerID kernel.UUID,
	address order.Address,
	location kernel.GeoPoint,
	scheduledDeliveryDate time.Time,
	lines []OrderLine,
) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setOrderID(orderID),
		orderCommand.setBatchID(batchID),
		orderCommand.setCustomerID(customerID),
		orderCommand.setAddress(address),
		orderCommand.setLocation(location),
		orderCommand.setScheduledDeliveryDate(scheduledDeliveryDate),
		orderCommand.setLines(lines),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID { return c.orderID }

// BatchID returns the requested batch, or nil to use the latest one.
func (c CreateOrderCommand) BatchID() *kernel.UUID {
	if c.batchID == nil {
		return nil
	}
	id := *c.batchID
	return &id
}

func (c CreateOrderCommand) CustomerID() kernel.UUID          { return c.customerID }
func (c CreateOrderCommand) Address() order.Address           { return c.address }
func (c CreateOrderCommand) Location() kernel.GeoPoint        { return c.location }
func (c CreateOrderCommand) ScheduledDeliveryDate() time.Time { return c.scheduledDeliveryDate }

// Lines returns a copy of the requested products.
func (c CreateOrderCommand) Lines() []OrderLine {
	out := make([]OrderLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setBatchID(batchID *kernel.UUID) error {
	if batchID == nil {
		return nil
	}
	if err := batchID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("batchID", err)
	}

	id := *batchID
	c.batchID = &id
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerID", err)
	}

	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setAddress(address order.Address) error {
	if address.IsZero() {
		return errs.NewValueIsRequiredError("address")
	}

	c.address = address
	return nil
}

func (c *CreateOrderCommand) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}

func (c *CreateOrderCommand) setScheduledDeliveryDate(date time.Time) error {
	if date.IsZero() {
		return errs.NewValueIsRequiredError("scheduledDeliveryDate")
	}

	c.scheduledDeliveryDate = date
	return nil
}

func (c *CreateOrderCommand) setLines(lines []OrderLine) error {
	for i, line := range lines {
		if err := line.ProductID.Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause(fmt.Sprintf("lines[%d].productID", i), err)
		}
		if line.Quantity <= 0 {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("lines[%d].quantity", i),
				fmt.Errorf("%d is not greater than 0", line.Quantity))
		}
	}

	c.lines = append([]OrderLine(nil), lines...)
	return nil
}
