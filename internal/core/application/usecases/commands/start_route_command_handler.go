package commands

import (
	"context"
	"time"
)

// StartRouteCommandHandler starts routes. The RouteStarted reaction moves the
// route's Pending orders InTransit within the same commit.
type StartRouteCommandHandler struct {
	uowFactory UoWFactory
}

func NewStartRouteCommandHandler(uowFactory UoWFactory) StartRouteCommandHandler {
	return StartRouteCommandHandler{uowFactory: uowFactory}
}

func (h StartRouteCommandHandler) Handle(ctx context.Context, cmd StartRouteCommand) error {
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

	if err = r.Start(time.Now()); err != nil {
		return err
	}

	if err = routeRepo.Update(ctx, r); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
