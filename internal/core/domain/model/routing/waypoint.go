package routing

import (
	"errors"
	"math"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
)

// Waypoint is a stop to be visited. Its ID is the id of the order delivered there.
type Waypoint struct {
	id       kernel.UUID
	location kernel.GeoPoint
}

// NewWaypoint validates the identifier and location.
func NewWaypoint(id kernel.UUID, location kernel.GeoPoint) (Waypoint, error) {
	if err := errors.Join(id.Validate(), location.Validate()); err != nil {
		return Waypoint{}, err
	}
	return Waypoint{id: id, location: location}, nil
}

func (w Waypoint) ID() kernel.UUID           { return w.id }
func (w Waypoint) Location() kernel.GeoPoint { return w.location }

// ValidateWaypoints checks the calculator input: it must be non-empty and free of
// duplicate identifiers. Violations are reported as errs.RoutingError.
func ValidateWaypoints(waypoints []Waypoint) error {
	if len(waypoints) == 0 {
		return errs.NewRoutingError("no waypoints to order")
	}

	seen := make(map[kernel.UUID]struct{}, len(waypoints))
	for _, w := range waypoints {
		if err := w.id.Validate(); err != nil {
			return errs.NewRoutingErrorWithCause("waypoint without identifier", err)
		}
		if _, ok := seen[w.id]; ok {
			return errs.NewRoutingError("duplicate waypoint " + w.id.String())
		}
		seen[w.id] = struct{}{}
	}
	return nil
}

// OrderedWaypoint is a waypoint identifier with its 1-based position in a route.
type OrderedWaypoint struct {
	waypointID kernel.UUID
	sequence   int
}

// NewOrderedWaypoint fails when sequence is not positive.
func NewOrderedWaypoint(waypointID kernel.UUID, sequence int) (OrderedWaypoint, error) {
	if err := waypointID.Validate(); err != nil {
		return OrderedWaypoint{}, err
	}
	if sequence <= 0 {
		return OrderedWaypoint{}, errs.NewValueIsOutOfRangeError("sequence", sequence, 1, math.MaxInt)
	}
	return OrderedWaypoint{waypointID: waypointID, sequence: sequence}, nil
}

func (w OrderedWaypoint) WaypointID() kernel.UUID { return w.waypointID }
func (w OrderedWaypoint) Sequence() int           { return w.sequence }
