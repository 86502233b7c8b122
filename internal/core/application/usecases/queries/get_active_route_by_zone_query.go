package queries

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrGetActiveRouteByZoneQueryIsNotConstructed = errors.New(
	"GetActiveRouteByZoneQuery must be created via NewGetActiveRouteByZoneQuery constructor",
)

// GetActiveRouteByZoneQuery finds the InProgress route serving a zone. When
// several are in progress the earliest started one is returned.
type GetActiveRouteByZoneQuery struct {
	zoneID kernel.UUID
	guard  guard.ConstructorGuard
}

func NewGetActiveRouteByZoneQuery(zoneID kernel.UUID) (GetActiveRouteByZoneQuery, error) {
	if err := zoneID.Validate(); err != nil {
		return GetActiveRouteByZoneQuery{}, errs.NewValueIsRequiredErrorWithCause("zoneID", err)
	}
	return GetActiveRouteByZoneQuery{zoneID: zoneID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetActiveRouteByZoneQuery) ZoneID() kernel.UUID { return q.zoneID }

func (q GetActiveRouteByZoneQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveRouteByZoneQueryIsNotConstructed)
}

// GetActiveRouteByZoneQueryResponse summarises delivery progress of the route.
type GetActiveRouteByZoneQueryResponse struct {
	RouteID        kernel.UUID
	DriverID       kernel.UUID
	StartedAt      time.Time
	TotalStops     int
	FinishedStops  int
	RemainingStops int
}
