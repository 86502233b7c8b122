// Package routerepo maps the route aggregate to the routes and route_stops tables.
package routerepo

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/routing"

	"github.com/google/uuid"
)

type RouteDTO struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BatchID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	DriverID      *uuid.UUID `gorm:"type:uuid;index"`
	ZoneID        *uuid.UUID `gorm:"type:uuid;index"`
	Status        string     `gorm:"type:varchar(16);not null;index"`
	ScheduledDate time.Time  `gorm:"not null"`
	CreatedAt     time.Time  `gorm:"not null"`
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	Version       int            `gorm:"not null"`
	Stops         []RouteStopDTO `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
}

func (RouteDTO) TableName() string {
	return "routes"
}

// RouteStopDTO is one planned stop. The order row carries the same sequence;
// the route keeps its own copy so a route can be read without its orders.
type RouteStopDTO struct {
	RouteID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Sequence int       `gorm:"type:int;not null"`
}

func (RouteStopDTO) TableName() string {
	return "route_stops"
}

func fromDomain(r *route.Route) RouteDTO {
	s := r.Snapshot()
	id := s.ID.Google()

	stops := make([]RouteStopDTO, 0, len(s.Stops))
	for _, stop := range s.Stops {
		stops = append(stops, RouteStopDTO{
			RouteID:  id,
			OrderID:  stop.WaypointID().Google(),
			Sequence: stop.Sequence(),
		})
	}

	return RouteDTO{
		ID:            id,
		BatchID:       s.BatchID.Google(),
		DriverID:      optionalID(s.DriverID),
		ZoneID:        optionalID(s.ZoneID),
		Status:        s.Status.String(),
		ScheduledDate: s.ScheduledDate,
		CreatedAt:     s.CreatedAt,
		StartedAt:     s.StartedAt,
		CompletedAt:   s.CompletedAt,
		CancelledAt:   s.CancelledAt,
		Version:       s.Version,
		Stops:         stops,
	}
}

func toDomain(dto RouteDTO) (*route.Route, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	batchID, err := kernel.UUIDFromGoogle(dto.BatchID)
	if err != nil {
		return nil, err
	}
	driverID, err := restoreID(dto.DriverID)
	if err != nil {
		return nil, err
	}
	zoneID, err := restoreID(dto.ZoneID)
	if err != nil {
		return nil, err
	}
	status, err := route.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	stops := make([]routing.OrderedWaypoint, 0, len(dto.Stops))
	for _, stopDTO := range dto.Stops {
		stop, stopErr := stopToDomain(stopDTO)
		if stopErr != nil {
			return nil, stopErr
		}
		stops = append(stops, stop)
	}

	return route.RestoreRoute(route.Snapshot{
		ID:            id,
		BatchID:       batchID,
		DriverID:      driverID,
		ZoneID:        zoneID,
		Status:        status,
		ScheduledDate: dto.ScheduledDate.UTC(),
		CreatedAt:     dto.CreatedAt.UTC(),
		StartedAt:     utc(dto.StartedAt),
		CompletedAt:   utc(dto.CompletedAt),
		CancelledAt:   utc(dto.CancelledAt),
		Stops:         stops,
		Version:       dto.Version,
	})
}

func stopToDomain(dto RouteStopDTO) (routing.OrderedWaypoint, error) {
	orderID, err := kernel.UUIDFromGoogle(dto.OrderID)
	if err != nil {
		return routing.OrderedWaypoint{}, err
	}
	return routing.NewOrderedWaypoint(orderID, dto.Sequence)
}

func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Google()
	return &raw
}

func restoreID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromGoogle(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
