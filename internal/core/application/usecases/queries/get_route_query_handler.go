package queries

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetRouteQueryHandler reads committed route state straight from the routes,
// route_stops and orders tables.
type GetRouteQueryHandler struct {
	db *gorm.DB
}

func NewGetRouteQueryHandler(db *gorm.DB) GetRouteQueryHandler {
	return GetRouteQueryHandler{db: db}
}

type routeRow struct {
	ID            uuid.UUID
	BatchID       uuid.UUID
	DriverID      *uuid.UUID
	ZoneID        *uuid.UUID
	Status        string
	ScheduledDate time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
}

type stopRow struct {
	Sequence      int
	OrderID       uuid.UUID
	Status        string
	AddressStreet string
	AddressCity   string
	LocationLat   float64
	LocationLon   float64
}

// Handle returns errs.ObjectNotFoundError when the route does not exist.
// Stops whose order row is missing are skipped.
func (h GetRouteQueryHandler) Handle(ctx context.Context, query GetRouteQuery) (GetRouteQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetRouteQueryResponse{}, err
	}
	db := h.db.WithContext(ctx)

	var rows []routeRow
	err := db.Raw(`
		SELECT id, batch_id, driver_id, zone_id, status, scheduled_date,
		       started_at, completed_at, cancelled_at
		FROM routes
		WHERE id = ?
	`, query.RouteID().Google()).Scan(&rows).Error
	if err != nil {
		return GetRouteQueryResponse{}, err
	}
	if len(rows) == 0 {
		return GetRouteQueryResponse{}, errs.NewObjectNotFoundError("route", query.RouteID().String())
	}

	var stops []stopRow
	err = db.Raw(`
		SELECT s.sequence, s.order_id, o.status,
		       o.address_street, o.address_city, o.location_lat, o.location_lon
		FROM route_stops s
		JOIN orders o ON o.id = s.order_id
		WHERE s.route_id = ?
		ORDER BY s.sequence
	`, query.RouteID().Google()).Scan(&stops).Error
	if err != nil {
		return GetRouteQueryResponse{}, err
	}

	return toRouteResponse(rows[0], stops)
}

func toRouteResponse(row routeRow, stops []stopRow) (GetRouteQueryResponse, error) {
	id, err := kernel.UUIDFromGoogle(row.ID)
	if err != nil {
		return GetRouteQueryResponse{}, err
	}
	batchID, err := kernel.UUIDFromGoogle(row.BatchID)
	if err != nil {
		return GetRouteQueryResponse{}, err
	}
	driverID, err := optionalUUID(row.DriverID)
	if err != nil {
		return GetRouteQueryResponse{}, err
	}
	zoneID, err := optionalUUID(row.ZoneID)
	if err != nil {
		return GetRouteQueryResponse{}, err
	}

	resp := GetRouteQueryResponse{
		ID:            id,
		BatchID:       batchID,
		DriverID:      driverID,
		ZoneID:        zoneID,
		Status:        row.Status,
		ScheduledDate: row.ScheduledDate.UTC(),
		StartedAt:     utcTime(row.StartedAt),
		CompletedAt:   utcTime(row.CompletedAt),
		CancelledAt:   utcTime(row.CancelledAt),
		Stops:         make([]RouteStopResponse, 0, len(stops)),
	}
	for _, s := range stops {
		orderID, idErr := kernel.UUIDFromGoogle(s.OrderID)
		if idErr != nil {
			return GetRouteQueryResponse{}, idErr
		}
		location, locErr := kernel.NewGeoPoint(s.LocationLat, s.LocationLon)
		if locErr != nil {
			return GetRouteQueryResponse{}, locErr
		}
		resp.Stops = append(resp.Stops, RouteStopResponse{
			Sequence:    s.Sequence,
			OrderID:     orderID,
			OrderStatus: s.Status,
			Street:      s.AddressStreet,
			City:        s.AddressCity,
			Location:    location,
		})
	}
	return resp, nil
}

func optionalUUID(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	k, err := kernel.UUIDFromGoogle(*id)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func utcTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
