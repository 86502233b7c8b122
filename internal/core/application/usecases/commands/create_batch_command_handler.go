package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/batch"
)

// CreateBatchCommandHandler opens batches.
type CreateBatchCommandHandler struct {
	uowFactory UoWFactory
}

func NewCreateBatchCommandHandler(uowFactory UoWFactory) CreateBatchCommandHandler {
	return CreateBatchCommandHandler{uowFactory: uowFactory}
}

// Handle opens the batch. Reusing an existing batch id fails with a conflict at commit.
func (h CreateBatchCommandHandler) Handle(ctx context.Context, cmd CreateBatchCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	b, err := batch.NewBatch(cmd.BatchID(), time.Now())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.BatchRepository().Add(ctx, b); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
