package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/guard"
)

var ErrAddOrderItemCommandIsNotConstructed = errors.New(
	"AddOrderItemCommand must be created via NewAddOrderItemCommand constructor",
)

// AddOrderItemCommand adds units of a product to an existing order.
type AddOrderItemCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	item    order.Item

	guard guard.ConstructorGuard
}

// NewAddOrderItemCommand validates the order id and the line. A non-positive
// quantity is a validation error.
func NewAddOrderItemCommand(orderID kernel.UUID, productID kernel.UUID, quantity int) (AddOrderItemCommand, error) {
	item, err := order.NewItem(productID, quantity)
	if err = errors.Join(orderID.Validate(), err); err != nil {
		return AddOrderItemCommand{}, err
	}

	return AddOrderItemCommand{
		orderID: orderID,
		item:    item,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c AddOrderItemCommand) Validate() error {
	return c.guard.Validate(ErrAddOrderItemCommandIsNotConstructed)
}

func (c AddOrderItemCommand) OrderID() kernel.UUID   { return c.orderID }
func (c AddOrderItemCommand) ProductID() kernel.UUID { return c.item.ProductID() }
func (c AddOrderItemCommand) Quantity() int          { return c.item.Quantity() }
