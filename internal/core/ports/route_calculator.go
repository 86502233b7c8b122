package ports

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/routing"
)

// RouteCalculator orders a set of waypoints into a visiting sequence.
//
// Implementations must:
//   - return a permutation of exactly the input waypoints numbered 1..N
//   - return the same result for the same origin and waypoint set, whatever
//     the order of the input slice
//   - fail with errs.RoutingError for an empty input or duplicate identifiers
//   - stop promptly when ctx is cancelled
type RouteCalculator interface {
	CalculateOrder(ctx context.Context, origin kernel.GeoPoint, waypoints []routing.Waypoint) (routing.OrderedRoute, error)
}
