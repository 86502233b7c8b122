package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/batch"
	"lastmile/internal/core/domain/model/order"
)

// CreateOrderCommandHandler handles the business logic for order creation.
// The order is counted against its batch in the same transaction, so a batch
// closed concurrently makes one of the two commits fail.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	// Order is now Pending and can be planned on a route of its batch
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
func NewCreateOrderCommandHandler(uowFactory UoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle reserves one order on the batch, creates the order with its lines and
// persists both.
//
// Returns errs.ObjectNotFoundError when the batch does not exist or, without an
// explicit batch, when no batch was ever opened; a validation error when the batch
// is closed.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
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
	var (
		b   *batch.Batch
		err error
	)
	if id := cmd.BatchID(); id != nil {
		b, err = batchRepo.Get(ctx, *id)
	} else {
		b, err = batchRepo.GetLatest(ctx)
	}
	if err != nil {
		return err
	}

	if err = b.ReserveOrders(1); err != nil {
		return err
	}

	o, err := order.NewOrder(
		cmd.OrderID(),
		b.ID(),
		cmd.CustomerID(),
		cmd.Address(),
		cmd.Location(),
		cmd.ScheduledDeliveryDate(),
		time.Now(),
	)
	if err != nil {
		return err
	}

	for _, line := range cmd.Lines() {
		if err = o.AddItem(line.ProductID, line.Quantity); err != nil {
			return err
		}
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	if err = batchRepo.Update(ctx, b); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}
