package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/route"
)

// CreateRouteCommandHandler creates routes for existing batches.
type CreateRouteCommandHandler struct {
	uowFactory UoWFactory
}

func NewCreateRouteCommandHandler(uowFactory UoWFactory) CreateRouteCommandHandler {
	return CreateRouteCommandHandler{uowFactory: uowFactory}
}

// Handle returns errs.ObjectNotFoundError when the batch does not exist.
func (h CreateRouteCommandHandler) Handle(ctx context.Context, cmd CreateRouteCommand) error {
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

	if _, err := uow.BatchRepository().Get(ctx, cmd.BatchID()); err != nil {
		return err
	}

	r, err := route.NewRoute(cmd.RouteID(), cmd.BatchID(), cmd.ZoneID(), cmd.ScheduledDate(), time.Now())
	if err != nil {
		return err
	}

	if err = uow.RouteRepository().Add(ctx, r); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
