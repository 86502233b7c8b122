package orderrepo

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"lastmile/internal/adapters/out/tracking"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM. Reads go
// through the unit of work's identity map; Add, Update and Remove only register
// the aggregate, and Write persists it when the unit of work commits.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker *tracking.Tracker
}

// NewGormOrderRepository creates a repository reading through db.
func NewGormOrderRepository(db *gorm.DB, tracker *tracking.Tracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormOrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	return r.track(aggregate, tracking.Insert)
}

func (r *GormOrderRepository) Update(_ context.Context, aggregate *order.Order) error {
	return r.track(aggregate, tracking.Update)
}

func (r *GormOrderRepository) Remove(_ context.Context, aggregate *order.Order) error {
	return r.track(aggregate, tracking.Delete)
}

func (r *GormOrderRepository) track(aggregate *order.Order, op tracking.Operation) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.tracker.Track(tracking.KindOrder, aggregate.ID().String(), aggregate, op)
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if tracked, ok := r.tracker.Lookup(tracking.KindOrder, id.String()); ok {
		return tracked.(*order.Order), nil
	}
	if r.tracker.IsDeleted(tracking.KindOrder, id.String()) {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}

	var dto OrderDTO
	if err := r.query(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	o, err := toDomain(dto)
	if err != nil {
		return nil, err
	}
	return r.tracker.Load(tracking.KindOrder, id.String(), o).(*order.Order), nil
}

// GetAll returns every order ordered by creation time.
func (r *GormOrderRepository) GetAll(ctx context.Context) ([]*order.Order, error) {
	orders, err := r.find(r.query(ctx), func(*order.Order) bool { return true })
	if err != nil {
		return nil, err
	}
	slices.SortFunc(orders, byCreatedAt)
	return orders, nil
}

// GetByRouteID returns the orders attached to routeID ordered by delivery sequence.
func (r *GormOrderRepository) GetByRouteID(ctx context.Context, routeID kernel.UUID) ([]*order.Order, error) {
	orders, err := r.find(
		r.query(ctx).Where("route_id = ?", routeID.Google()),
		func(o *order.Order) bool { return o.IsOnRoute(routeID) },
	)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(orders, func(a, b *order.Order) int {
		return *a.DeliverySequence() - *b.DeliverySequence()
	})
	return orders, nil
}

// GetByBatchID returns the orders reserved on batchID ordered by creation time.
func (r *GormOrderRepository) GetByBatchID(ctx context.Context, batchID kernel.UUID) ([]*order.Order, error) {
	orders, err := r.find(
		r.query(ctx).Where("batch_id = ?", batchID.Google()),
		func(o *order.Order) bool { return o.BatchID().IsEqual(batchID) },
	)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(orders, byCreatedAt)
	return orders, nil
}

// Write persists a tracked order inside the committing transaction and returns
// the version stored. Updates and deletes are checked against the version the
// order was loaded with.
func (r *GormOrderRepository) Write(ctx context.Context, op tracking.Operation, o *order.Order) (int, error) {
	dto := fromDomain(o)
	db := r.db.WithContext(ctx)

	switch op {
	case tracking.Insert:
		dto.Version = 1
		if err := db.Omit(clause.Associations).Create(&dto).Error; err != nil {
			return 0, err
		}
		return 1, r.replaceItems(db, dto)
	case tracking.Update:
		expected := dto.Version
		dto.Version = expected + 1
		result := db.Model(&OrderDTO{}).
			Where("id = ? AND version = ?", dto.ID, expected).
			Select("*").Omit("id", clause.Associations).
			Updates(&dto)
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			return 0, errs.NewConcurrencyConflictError(tracking.KindOrder, o.ID().String(), expected)
		}
		return dto.Version, r.replaceItems(db, dto)
	case tracking.Delete:
		result := db.Where("id = ? AND version = ?", dto.ID, dto.Version).Delete(&OrderDTO{})
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			return 0, errs.NewConcurrencyConflictError(tracking.KindOrder, o.ID().String(), dto.Version)
		}
		return 0, nil
	default:
		return o.Version(), nil
	}
}

func (r *GormOrderRepository) replaceItems(db *gorm.DB, dto OrderDTO) error {
	if err := db.Where("order_id = ?", dto.ID).Delete(&OrderItemDTO{}).Error; err != nil {
		return err
	}
	if len(dto.Items) == 0 {
		return nil
	}
	return db.Create(&dto.Items).Error
}

func (r *GormOrderRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

func (r *GormOrderRepository) find(q *gorm.DB, keep func(*order.Order) bool) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := q.Find(&dtos).Error; err != nil {
		return nil, err
	}

	stored := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		stored = append(stored, o)
	}

	return tracking.MergeLoaded(r.tracker, tracking.KindOrder, stored,
		func(o *order.Order) string { return o.ID().String() }, keep), nil
}

func byCreatedAt(a, b *order.Order) int {
	if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
		return c
	}
	return a.ID().Compare(b.ID())
}

func errIncompleteColumns(group string) error {
	return errs.NewValueIsInvalidErrorWithCause(group, fmt.Errorf("%s columns are only partially set", group))
}
