package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"
)

// CompletionRepositories is the subset of a unit of work the completion rule needs.
type CompletionRepositories interface {
	RouteRepository() ports.RouteRepository
	OrderRepository() ports.OrderRepository
}

// RouteCompletionService owns the single rule deciding whether a route is done:
// a route completes when it is InProgress, has at least one attached order and
// every attached order is Delivered, Cancelled or Failed.
type RouteCompletionService struct {
	now func() time.Time
}

// NewRouteCompletionService creates the service. now supplies the completion
// timestamp; nil means time.Now.
func NewRouteCompletionService(now func() time.Time) RouteCompletionService {
	if now == nil {
		now = time.Now
	}
	return RouteCompletionService{now: now}
}

// TryCompleteRoute loads routeID and its orders from repos and completes the route
// when the rule holds. The completed route is registered with repos for update.
//
// Returns false without changing anything when the route does not exist, has no
// orders, is not InProgress, or still has an unfinished order. A second call after
// a successful completion returns false.
func (s RouteCompletionService) TryCompleteRoute(
	ctx context.Context,
	repos CompletionRepositories,
	routeID kernel.UUID,
) (bool, error) {
	r, err := repos.RouteRepository().Get(ctx, routeID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load route %s: %w", routeID, err)
	}

	orders, err := repos.OrderRepository().GetByRouteID(ctx, routeID)
	if err != nil {
		return false, fmt.Errorf("load orders of route %s: %w", routeID, err)
	}

	if !CanCompleteRoute(r, orders) {
		return false, nil
	}

	completed, err := r.Complete(s.now())
	if err != nil || !completed {
		return false, err
	}

	if err = repos.RouteRepository().Update(ctx, r); err != nil {
		return false, err
	}
	return true, nil
}

// CanCompleteRoute evaluates the completion rule on already loaded aggregates.
func CanCompleteRoute(r *route.Route, orders []*order.Order) bool {
	if r == nil || r.Status() != route.InProgress || len(orders) == 0 {
		return false
	}
	for _, o := range orders {
		if !o.Status().IsTerminal() {
			return false
		}
	}
	return true
}
