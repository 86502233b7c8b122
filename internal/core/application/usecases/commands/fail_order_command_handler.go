package commands

import (
	"context"
	"time"
)

// FailOrderCommandHandler marks orders as failed.
type FailOrderCommandHandler struct {
	uowFactory UoWFactory
}

func NewFailOrderCommandHandler(uowFactory UoWFactory) FailOrderCommandHandler {
	return FailOrderCommandHandler{uowFactory: uowFactory}
}

func (h FailOrderCommandHandler) Handle(ctx context.Context, cmd FailOrderCommand) error {
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

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = o.MarkAsFailed(cmd.Reason(), time.Now()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
