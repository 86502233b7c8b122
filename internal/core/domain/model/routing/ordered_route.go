package routing

import (
	"fmt"
	"slices"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
)

// OrderedRoute is the result of ordering a set of waypoints. Stops are kept
// sorted by sequence; sequences are exactly 1..N and identifiers are unique.
type OrderedRoute struct {
	stops []OrderedWaypoint
}

// NewOrderedRoute accepts stops in any order and validates that they form a
// complete 1..N sequence over distinct waypoints.
func NewOrderedRoute(stops []OrderedWaypoint) (OrderedRoute, error) {
	if len(stops) == 0 {
		return OrderedRoute{}, errs.NewValueIsRequiredError("stops")
	}

	sorted := slices.Clone(stops)
	slices.SortFunc(sorted, func(a, b OrderedWaypoint) int { return a.sequence - b.sequence })

	seen := make(map[kernel.UUID]struct{}, len(sorted))
	for i, stop := range sorted {
		if stop.sequence != i+1 {
			return OrderedRoute{}, errs.NewValueIsInvalidErrorWithCause("stops",
				fmt.Errorf("sequence %d found where %d was expected", stop.sequence, i+1))
		}
		if _, ok := seen[stop.waypointID]; ok {
			return OrderedRoute{}, errs.NewValueIsInvalidErrorWithCause("stops",
				fmt.Errorf("waypoint %s appears twice", stop.waypointID))
		}
		seen[stop.waypointID] = struct{}{}
	}

	return OrderedRoute{stops: sorted}, nil
}

// OrderedRouteFromIDs builds a route visiting ids in the given order.
func OrderedRouteFromIDs(ids []kernel.UUID) (OrderedRoute, error) {
	stops := make([]OrderedWaypoint, 0, len(ids))
	for i, id := range ids {
		stop, err := NewOrderedWaypoint(id, i+1)
		if err != nil {
			return OrderedRoute{}, err
		}
		stops = append(stops, stop)
	}
	return NewOrderedRoute(stops)
}

// Stops returns a copy of the stops sorted by sequence.
func (r OrderedRoute) Stops() []OrderedWaypoint {
	return slices.Clone(r.stops)
}

// Len returns the number of stops.
func (r OrderedRoute) Len() int {
	return len(r.stops)
}

// IDs returns the waypoint identifiers in visiting order.
func (r OrderedRoute) IDs() []kernel.UUID {
	ids := make([]kernel.UUID, len(r.stops))
	for i, stop := range r.stops {
		ids[i] = stop.waypointID
	}
	return ids
}

// SequenceOf returns the position of id, if present.
func (r OrderedRoute) SequenceOf(id kernel.UUID) (int, bool) {
	for _, stop := range r.stops {
		if stop.waypointID.IsEqual(id) {
			return stop.sequence, true
		}
	}
	return 0, false
}

// Matches reports an error unless the route covers exactly the identifiers in ids.
func (r OrderedRoute) Matches(ids []kernel.UUID) error {
	if len(ids) != len(r.stops) {
		return errs.NewValueIsInvalidErrorWithCause("orderedRoute",
			fmt.Errorf("route has %d stops but %d orders are attached", len(r.stops), len(ids)))
	}
	seen := make(map[kernel.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return errs.NewValueIsInvalidErrorWithCause("orderedRoute", fmt.Errorf("order %s is listed twice", id))
		}
		seen[id] = struct{}{}
		if _, ok := r.SequenceOf(id); !ok {
			return errs.NewValueIsInvalidErrorWithCause("orderedRoute",
				fmt.Errorf("attached order %s has no stop", id))
		}
	}
	return nil
}
