package commands

import (
	"context"
	"time"
)

// CloseBatchCommandHandler closes batches. The BatchClosed event is written to
// the outbox with the batch.
type CloseBatchCommandHandler struct {
	uowFactory UoWFactory
}

func NewCloseBatchCommandHandler(uowFactory UoWFactory) CloseBatchCommandHandler {
	return CloseBatchCommandHandler{uowFactory: uowFactory}
}

// Handle closes the batch. Closing a closed batch is a validation error.
func (h CloseBatchCommandHandler) Handle(ctx context.Context, cmd CloseBatchCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	batchRepo := uow.BatchRepository()
	b, err := batchRepo.Get(ctx, cmd.BatchID())
	if err != nil {
		return err
	}

	if err = b.Close(time.Now()); err != nil {
		return err
	}

	if err = batchRepo.Update(ctx, b); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
