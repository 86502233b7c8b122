package commands

import (
	"context"

	"lastmile/internal/core/domain/services"
)

// CompleteRouteCommandHandler runs the route completion rule on demand. Routes are
// normally completed by the reaction to the last order reaching a terminal
// status; this handler lets a sweep or an operator converge a route whose
// reaction lost a concurrent write.
type CompleteRouteCommandHandler struct {
	uowFactory UoWFactory
	completion services.RouteCompletionService
}

func NewCompleteRouteCommandHandler(
	uowFactory UoWFactory,
	completion services.RouteCompletionService,
) CompleteRouteCommandHandler {
	return CompleteRouteCommandHandler{uowFactory: uowFactory, completion: completion}
}

// Handle reports whether the route was completed by this call. A route that is
// missing, not InProgress or still has unfinished orders yields (false, nil).
func (h CompleteRouteCommandHandler) Handle(ctx context.Context, cmd CompleteRouteCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	completed, err := h.completion.TryCompleteRoute(ctx, uow, cmd.RouteID())
	if err != nil || !completed {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	return true, nil
}
