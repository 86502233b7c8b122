package queries

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type GetActiveRouteByZoneQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveRouteByZoneQueryHandler(db *gorm.DB) GetActiveRouteByZoneQueryHandler {
	return GetActiveRouteByZoneQueryHandler{db: db}
}

type activeRouteRow struct {
	ID            uuid.UUID
	DriverID      uuid.UUID
	StartedAt     time.Time
	TotalStops    int
	FinishedStops int
}

// Handle counts the orders attached to the route; delivered, failed and
// cancelled orders are finished. Returns errs.ObjectNotFoundError when the
// zone has no route in progress.
func (h GetActiveRouteByZoneQueryHandler) Handle(
	ctx context.Context,
	query GetActiveRouteByZoneQuery,
) (GetActiveRouteByZoneQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetActiveRouteByZoneQueryResponse{}, err
	}

	finished := pq.Array([]string{order.Delivered.String(), order.Failed.String(), order.Cancelled.String()})
	var rows []activeRouteRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT r.id, r.driver_id, r.started_at,
		       COUNT(o.id) AS total_stops,
		       COUNT(o.id) FILTER (WHERE o.status = ANY(?)) AS finished_stops
		FROM routes r
		LEFT JOIN orders o ON o.route_id = r.id
		WHERE r.status = ? AND r.zone_id = ?
		GROUP BY r.id, r.driver_id, r.started_at
		ORDER BY r.started_at, r.id
		LIMIT 1
	`, finished, route.InProgress.String(), query.ZoneID().Google()).Scan(&rows).Error
	if err != nil {
		return GetActiveRouteByZoneQueryResponse{}, err
	}
	if len(rows) == 0 {
		return GetActiveRouteByZoneQueryResponse{}, errs.NewObjectNotFoundError("active route in zone", query.ZoneID().String())
	}

	row := rows[0]
	routeID, err := kernel.UUIDFromGoogle(row.ID)
	if err != nil {
		return GetActiveRouteByZoneQueryResponse{}, err
	}
	driverID, err := kernel.UUIDFromGoogle(row.DriverID)
	if err != nil {
		return GetActiveRouteByZoneQueryResponse{}, err
	}
	return GetActiveRouteByZoneQueryResponse{
		RouteID:        routeID,
		DriverID:       driverID,
		StartedAt:      row.StartedAt.UTC(),
		TotalStops:     row.TotalStops,
		FinishedStops:  row.FinishedStops,
		RemainingStops: row.TotalStops - row.FinishedStops,
	}, nil
}
