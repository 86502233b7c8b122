package queries

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAllDriversQueryHandler retrieves all drivers from the database.
// Uses direct SQL queries for optimal read performance in the CQRS pattern.
//
// Example:
//
//	handler := NewGetAllDriversQueryHandler(db)
//
//	drivers, err := handler.Handle(ctx, NewGetAllDriversQuery())
//	if err != nil {
//	    return err
//	}
//
//	fmt.Printf("Found %d drivers\n", len(drivers))
type GetAllDriversQueryHandler struct {
	db *gorm.DB
}

// NewGetAllDriversQueryHandler creates a handler for driver retrieval queries.
func NewGetAllDriversQueryHandler(db *gorm.DB) GetAllDriversQueryHandler {
	return GetAllDriversQueryHandler{db: db}
}

// Handle returns drivers sorted by name, then id. A driver on several
// InProgress routes reports the earliest started one.
func (h GetAllDriversQueryHandler) Handle(
	ctx context.Context,
	query GetAllDriversQuery,
) ([]GetAllDriversQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	drivers := make([]GetAllDriversQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			d.id,
			d.name,
			d.zone_id,
			d.created_at,
			active.id
		FROM drivers d
		LEFT JOIN LATERAL (
			SELECT r.id
			FROM routes r
			WHERE r.driver_id = d.id AND r.status = ?
			ORDER BY r.started_at, r.id
			LIMIT 1
		) active ON true
		ORDER BY d.name, d.id
	`, route.InProgress.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var driver GetAllDriversQueryResponse
		var id uuid.UUID
		var zoneID, activeRouteID *uuid.UUID

		err = rows.Scan(
			&id,
			&driver.Name,
			&zoneID,
			&driver.CreatedAt,
			&activeRouteID,
		)
		if err != nil {
			return nil, err
		}

		if driver.ID, err = kernel.UUIDFromGoogle(id); err != nil {
			return nil, err
		}
		if driver.ZoneID, err = optionalUUID(zoneID); err != nil {
			return nil, err
		}
		if driver.ActiveRouteID, err = optionalUUID(activeRouteID); err != nil {
			return nil, err
		}
		driver.CreatedAt = driver.CreatedAt.UTC()
		drivers = append(drivers, driver)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return drivers, nil
}
