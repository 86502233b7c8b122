package commands

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrFailOrderCommandIsNotConstructed = errors.New(
	"FailOrderCommand must be created via NewFailOrderCommand constructor",
)

// FailOrderCommand gives up on delivering an order.
type FailOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

// NewFailOrderCommand requires a reason.
func NewFailOrderCommand(orderID kernel.UUID, reason string) (FailOrderCommand, error) {
	var errReason error
	reason = strings.TrimSpace(reason)
	if reason == "" {
		errReason = errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(orderID.Validate(), errReason); err != nil {
		return FailOrderCommand{}, err
	}

	return FailOrderCommand{orderID: orderID, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

func (c FailOrderCommand) Validate() error {
	return c.guard.Validate(ErrFailOrderCommandIsNotConstructed)
}

func (c FailOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c FailOrderCommand) Reason() string       { return c.reason }
