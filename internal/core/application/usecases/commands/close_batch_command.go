package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrCloseBatchCommandIsNotConstructed = errors.New(
	"CloseBatchCommand must be created via NewCloseBatchCommand constructor",
)

// CloseBatchCommand stops a batch from accepting new orders.
type CloseBatchCommand struct { //nolint:recvcheck //using for validation
	batchID kernel.UUID

	guard guard.ConstructorGuard
}

func NewCloseBatchCommand(batchID kernel.UUID) (CloseBatchCommand, error) {
	if err := batchID.Validate(); err != nil {
		return CloseBatchCommand{}, err
	}
	return CloseBatchCommand{batchID: batchID, guard: guard.NewConstructorGuard()}, nil
}

func (c CloseBatchCommand) Validate() error {
	return c.guard.Validate(ErrCloseBatchCommandIsNotConstructed)
}

func (c CloseBatchCommand) BatchID() kernel.UUID {
	return c.batchID
}
