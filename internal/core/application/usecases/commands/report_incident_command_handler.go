package commands

import (
	"context"
	"time"
)

// ReportIncidentCommandHandler records incidents on orders. The order keeps its
// status; failing or cancelling it is a separate decision.
type ReportIncidentCommandHandler struct {
	uowFactory UoWFactory
}

func NewReportIncidentCommandHandler(uowFactory UoWFactory) ReportIncidentCommandHandler {
	return ReportIncidentCommandHandler{uowFactory: uowFactory}
}

func (h ReportIncidentCommandHandler) Handle(ctx context.Context, cmd ReportIncidentCommand) error {
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

	if err = o.ReportIncident(cmd.DriverID(), cmd.IncidentType(), cmd.Description(), time.Now()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
