package commands

import (
	"context"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"
)

// DeliverOrderCommandHandler marks orders as delivered. When the delivered order
// was the last unfinished one on its route, the OrderDelivered reaction completes
// the route in the same commit.
type DeliverOrderCommandHandler struct {
	uowFactory UoWFactory
}

func NewDeliverOrderCommandHandler(uowFactory UoWFactory) DeliverOrderCommandHandler {
	return DeliverOrderCommandHandler{uowFactory: uowFactory}
}

// Handle rejects a proof signed by a driver other than the one driving the
// order's route.
func (h DeliverOrderCommandHandler) Handle(ctx context.Context, cmd DeliverOrderCommand) error {
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

	if err = h.checkDriver(ctx, uow, o, cmd); err != nil {
		return err
	}

	if err = o.MarkAsDelivered(cmd.DriverID(), cmd.Location(), time.Now(), cmd.Comments(), cmd.PhotoRef()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (h DeliverOrderCommandHandler) checkDriver(ctx context.Context, uow UoW, o *order.Order, cmd DeliverOrderCommand) error {
	routeID := o.RouteID()
	if routeID == nil {
		return nil
	}

	r, err := uow.RouteRepository().Get(ctx, *routeID)
	if err != nil {
		return err
	}

	driverID := r.DriverID()
	if driverID != nil && !driverID.IsEqual(cmd.DriverID()) {
		return errs.NewValueIsInvalidErrorWithCause("driverID",
			fmt.Errorf("driver %s does not drive route %s", cmd.DriverID(), r.ID()))
	}
	return nil
}
