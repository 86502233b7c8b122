package commands

import (
	"context"
	"time"
)

// CancelRouteCommandHandler cancels routes. Orders still Pending on the route are
// detached by the RouteCancelled reaction so they can be planned again; orders
// already in transit keep their route.
type CancelRouteCommandHandler struct {
	uowFactory UoWFactory
}

func NewCancelRouteCommandHandler(uowFactory UoWFactory) CancelRouteCommandHandler {
	return CancelRouteCommandHandler{uowFactory: uowFactory}
}

func (h CancelRouteCommandHandler) Handle(ctx context.Context, cmd CancelRouteCommand) error {
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

	routeRepo := uow.RouteRepository()
	r, err := routeRepo.Get(ctx, cmd.RouteID())
	if err != nil {
		return err
	}

	if err = r.Cancel(time.Now()); err != nil {
		return err
	}

	if err = routeRepo.Update(ctx, r); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
