package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrCreateBatchCommandIsNotConstructed = errors.New(
	"CreateBatchCommand must be created via NewCreateBatchCommand constructor",
)

// CreateBatchCommand opens a new batch that orders can be reserved on.
type CreateBatchCommand struct { //nolint:recvcheck //using for validation
	batchID kernel.UUID

	guard guard.ConstructorGuard
}

func NewCreateBatchCommand(batchID kernel.UUID) (CreateBatchCommand, error) {
	if err := batchID.Validate(); err != nil {
		return CreateBatchCommand{}, err
	}
	return CreateBatchCommand{batchID: batchID, guard: guard.NewConstructorGuard()}, nil
}

func (c CreateBatchCommand) Validate() error {
	return c.guard.Validate(ErrCreateBatchCommandIsNotConstructed)
}

func (c CreateBatchCommand) BatchID() kernel.UUID {
	return c.batchID
}
