package queries

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrGetRouteQueryIsNotConstructed = errors.New(
	"GetRouteQuery must be created via NewGetRouteQuery constructor",
)

// GetRouteQuery reads one route with its stops in delivery order.
type GetRouteQuery struct {
	routeID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetRouteQuery(routeID kernel.UUID) (GetRouteQuery, error) {
	if err := routeID.Validate(); err != nil {
		return GetRouteQuery{}, errs.NewValueIsRequiredErrorWithCause("routeID", err)
	}
	return GetRouteQuery{routeID: routeID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetRouteQuery) RouteID() kernel.UUID { return q.routeID }

func (q GetRouteQuery) Validate() error {
	return q.guard.Validate(ErrGetRouteQueryIsNotConstructed)
}

type GetRouteQueryResponse struct {
	ID            kernel.UUID
	BatchID       kernel.UUID
	DriverID      *kernel.UUID
	ZoneID        *kernel.UUID
	Status        string
	ScheduledDate time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	Stops         []RouteStopResponse
}

// RouteStopResponse is one stop joined with the state of its order.
type RouteStopResponse struct {
	Sequence    int
	OrderID     kernel.UUID
	OrderStatus string
	Street      string
	City        string
	Location    kernel.GeoPoint
}
