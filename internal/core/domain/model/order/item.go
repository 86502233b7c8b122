package order

import (
	"fmt"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
)

// Item is a line of an order: a product and a positive quantity.
type Item struct {
	productID kernel.UUID
	quantity  int
}

// NewItem validates the product reference and quantity.
func NewItem(productID kernel.UUID, quantity int) (Item, error) {
	if err := productID.Validate(); err != nil {
		return Item{}, errs.NewValueIsRequiredErrorWithCause("productID", err)
	}
	if quantity <= 0 {
		return Item{}, errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	return Item{productID: productID, quantity: quantity}, nil
}

func (i Item) ProductID() kernel.UUID { return i.productID }
func (i Item) Quantity() int          { return i.quantity }
