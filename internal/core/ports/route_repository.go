package ports

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
)

// RouteRepository defines the persistence contract for route aggregates.
// Write methods follow the same deferred semantics as OrderRepository.
type RouteRepository interface {
	Add(ctx context.Context, aggregate *route.Route) error
	Update(ctx context.Context, aggregate *route.Route) error
	Remove(ctx context.Context, aggregate *route.Route) error

	// Get retrieves a route by identifier or returns errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*route.Route, error)

	GetAll(ctx context.Context) ([]*route.Route, error)

	// GetInProgressByZone returns the route currently driven in zoneID, or
	// errs.ObjectNotFoundError when the zone has none.
	GetInProgressByZone(ctx context.Context, zoneID kernel.UUID) (*route.Route, error)

	// GetAllInProgress returns every InProgress route.
	GetAllInProgress(ctx context.Context) ([]*route.Route, error)
}
