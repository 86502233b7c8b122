package queries

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GetUndeliveredOrdersQueryHandler retrieves Pending and InTransit orders from
// the database, oldest first.
type GetUndeliveredOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetUndeliveredOrdersQueryHandler(db *gorm.DB) GetUndeliveredOrdersQueryHandler {
	return GetUndeliveredOrdersQueryHandler{db: db}
}

// Handle returns an empty, non-nil slice when nothing is waiting.
func (h GetUndeliveredOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetUndeliveredOrdersQuery,
) ([]GetUndeliveredOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	statuses := pq.Array([]string{order.Pending.String(), order.InTransit.String()})
	q := h.db.WithContext(ctx)
	var tx *gorm.DB
	if batchID := query.BatchID(); batchID != nil {
		tx = q.Raw(`
			SELECT id, batch_id, route_id, delivery_sequence, status,
			       address_street, address_city, location_lat, location_lon, created_at
			FROM orders
			WHERE status = ANY(?) AND batch_id = ?
			ORDER BY created_at, id
		`, statuses, batchID.Google())
	} else {
		tx = q.Raw(`
			SELECT id, batch_id, route_id, delivery_sequence, status,
			       address_street, address_city, location_lat, location_lon, created_at
			FROM orders
			WHERE status = ANY(?)
			ORDER BY created_at, id
		`, statuses)
	}

	rows, err := tx.Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]GetUndeliveredOrdersQueryResponse, 0)
	for rows.Next() {
		var (
			id, batchID uuid.UUID
			routeID     *uuid.UUID
			resp        GetUndeliveredOrdersQueryResponse
			lat, lon    float64
			createdAt   time.Time
		)
		err = rows.Scan(
			&id,
			&batchID,
			&routeID,
			&resp.DeliverySequence,
			&resp.Status,
			&resp.Street,
			&resp.City,
			&lat,
			&lon,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromGoogle(id); err != nil {
			return nil, err
		}
		if resp.BatchID, err = kernel.UUIDFromGoogle(batchID); err != nil {
			return nil, err
		}
		if resp.RouteID, err = optionalUUID(routeID); err != nil {
			return nil, err
		}
		if resp.Location, err = kernel.NewGeoPoint(lat, lon); err != nil {
			return nil, err
		}
		resp.CreatedAt = createdAt.UTC()
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
