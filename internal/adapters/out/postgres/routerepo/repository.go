package routerepo

import (
	"context"
	"errors"
	"slices"

	"lastmile/internal/adapters/out/tracking"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRouteRepository implements ports.RouteRepository using GORM.
type GormRouteRepository struct {
	db      *gorm.DB
	tracker *tracking.Tracker
}

// NewGormRouteRepository creates a repository reading through db.
func NewGormRouteRepository(db *gorm.DB, tracker *tracking.Tracker) *GormRouteRepository {
	return &GormRouteRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormRouteRepository) Add(_ context.Context, aggregate *route.Route) error {
	return r.track(aggregate, tracking.Insert)
}

func (r *GormRouteRepository) Update(_ context.Context, aggregate *route.Route) error {
	return r.track(aggregate, tracking.Update)
}

func (r *GormRouteRepository) Remove(_ context.Context, aggregate *route.Route) error {
	return r.track(aggregate, tracking.Delete)
}

func (r *GormRouteRepository) track(aggregate *route.Route, op tracking.Operation) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.tracker.Track(tracking.KindRoute, aggregate.ID().String(), aggregate, op)
}

// Get retrieves a route with its stops.
func (r *GormRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if tracked, ok := r.tracker.Lookup(tracking.KindRoute, id.String()); ok {
		return tracked.(*route.Route), nil
	}
	if r.tracker.IsDeleted(tracking.KindRoute, id.String()) {
		return nil, errs.NewObjectNotFoundError("route", id.String())
	}

	var dto RouteDTO
	if err := r.query(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("route", id.String())
		}
		return nil, err
	}

	rt, err := toDomain(dto)
	if err != nil {
		return nil, err
	}
	return r.tracker.Load(tracking.KindRoute, id.String(), rt).(*route.Route), nil
}

func (r *GormRouteRepository) GetAll(ctx context.Context) ([]*route.Route, error) {
	routes, err := r.find(r.query(ctx), func(*route.Route) bool { return true })
	if err != nil {
		return nil, err
	}
	slices.SortFunc(routes, func(a, b *route.Route) int {
		if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
			return c
		}
		return a.ID().Compare(b.ID())
	})
	return routes, nil
}

// GetInProgressByZone returns the earliest started InProgress route of zoneID.
func (r *GormRouteRepository) GetInProgressByZone(ctx context.Context, zoneID kernel.UUID) (*route.Route, error) {
	routes, err := r.find(
		r.query(ctx).Where("status = ? AND zone_id = ?", route.InProgress.String(), zoneID.Google()),
		func(rt *route.Route) bool {
			z := rt.ZoneID()
			return rt.Status() == route.InProgress && z != nil && z.IsEqual(zoneID)
		},
	)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, errs.NewObjectNotFoundError("active route in zone", zoneID.String())
	}
	slices.SortFunc(routes, byStartedAt)
	return routes[0], nil
}

func (r *GormRouteRepository) GetAllInProgress(ctx context.Context) ([]*route.Route, error) {
	routes, err := r.find(
		r.query(ctx).Where("status = ?", route.InProgress.String()),
		func(rt *route.Route) bool { return rt.Status() == route.InProgress },
	)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(routes, byStartedAt)
	return routes, nil
}

// Write persists a tracked route and its stops inside the committing
// transaction and returns the version stored.
func (r *GormRouteRepository) Write(ctx context.Context, op tracking.Operation, rt *route.Route) (int, error) {
	dto := fromDomain(rt)
	db := r.db.WithContext(ctx)

	switch op {
	case tracking.Insert:
		dto.Version = 1
		if err := db.Omit(clause.Associations).Create(&dto).Error; err != nil {
			return 0, err
		}
		return 1, r.replaceStops(db, dto)
	case tracking.Update:
		expected := dto.Version
		dto.Version = expected + 1
		result := db.Model(&RouteDTO{}).
			Where("id = ? AND version = ?", dto.ID, expected).
			Select("*").Omit("id", clause.Associations).
			Updates(&dto)
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			return 0, errs.NewConcurrencyConflictError(tracking.KindRoute, rt.ID().String(), expected)
		}
		return dto.Version, r.replaceStops(db, dto)
	case tracking.Delete:
		result := db.Where("id = ? AND version = ?", dto.ID, dto.Version).Delete(&RouteDTO{})
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			return 0, errs.NewConcurrencyConflictError(tracking.KindRoute, rt.ID().String(), dto.Version)
		}
		return 0, nil
	default:
		return rt.Version(), nil
	}
}

func (r *GormRouteRepository) replaceStops(db *gorm.DB, dto RouteDTO) error {
	if err := db.Where("route_id = ?", dto.ID).Delete(&RouteStopDTO{}).Error; err != nil {
		return err
	}
	if len(dto.Stops) == 0 {
		return nil
	}
	return db.Create(&dto.Stops).Error
}

func (r *GormRouteRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Stops", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence")
	})
}

func (r *GormRouteRepository) find(q *gorm.DB, keep func(*route.Route) bool) ([]*route.Route, error) {
	var dtos []RouteDTO
	if err := q.Find(&dtos).Error; err != nil {
		return nil, err
	}

	stored := make([]*route.Route, 0, len(dtos))
	for _, dto := range dtos {
		rt, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		stored = append(stored, rt)
	}

	return tracking.MergeLoaded(r.tracker, tracking.KindRoute, stored,
		func(rt *route.Route) string { return rt.ID().String() }, keep), nil
}

func byStartedAt(a, b *route.Route) int {
	if a.StartedAt() != nil && b.StartedAt() != nil {
		if c := a.StartedAt().Compare(*b.StartedAt()); c != 0 {
			return c
		}
	}
	return a.ID().Compare(b.ID())
}
