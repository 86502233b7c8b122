// Package batchrepo persists batches in the batches table.
package batchrepo

import (
	"context"
	"errors"
	"slices"
	"time"

	"lastmile/internal/adapters/out/tracking"
	"lastmile/internal/core/domain/model/batch"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BatchDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status      string    `gorm:"type:varchar(16);not null"`
	OpenedAt    time.Time `gorm:"not null;index"`
	ClosedAt    *time.Time
	TotalOrders int `gorm:"type:int;not null"`
	Version     int `gorm:"not null"`
}

func (BatchDTO) TableName() string {
	return "batches"
}

// GormBatchRepository implements ports.BatchRepository using GORM.
type GormBatchRepository struct {
	db      *gorm.DB
	tracker *tracking.Tracker
}

func NewGormBatchRepository(db *gorm.DB, tracker *tracking.Tracker) *GormBatchRepository {
	return &GormBatchRepository{db: db, tracker: tracker}
}

func (r *GormBatchRepository) Add(_ context.Context, aggregate *batch.Batch) error {
	return r.track(aggregate, tracking.Insert)
}

func (r *GormBatchRepository) Update(_ context.Context, aggregate *batch.Batch) error {
	return r.track(aggregate, tracking.Update)
}

func (r *GormBatchRepository) Remove(_ context.Context, aggregate *batch.Batch) error {
	return r.track(aggregate, tracking.Delete)
}

func (r *GormBatchRepository) track(aggregate *batch.Batch, op tracking.Operation) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.tracker.Track(tracking.KindBatch, aggregate.ID().String(), aggregate, op)
}

func (r *GormBatchRepository) Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if tracked, ok := r.tracker.Lookup(tracking.KindBatch, id.String()); ok {
		return tracked.(*batch.Batch), nil
	}
	if r.tracker.IsDeleted(tracking.KindBatch, id.String()) {
		return nil, errs.NewObjectNotFoundError("batch", id.String())
	}

	var dto BatchDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("batch", id.String())
		}
		return nil, err
	}
	return r.load(dto)
}

// GetAll returns every batch ordered by opening time, including batches added
// in the current unit of work.
func (r *GormBatchRepository) GetAll(ctx context.Context) ([]*batch.Batch, error) {
	var dtos []BatchDTO
	if err := r.db.WithContext(ctx).Find(&dtos).Error; err != nil {
		return nil, err
	}

	stored := make([]*batch.Batch, 0, len(dtos))
	for _, dto := range dtos {
		b, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		stored = append(stored, b)
	}

	batches := tracking.MergeLoaded(r.tracker, tracking.KindBatch, stored,
		func(b *batch.Batch) string { return b.ID().String() },
		func(*batch.Batch) bool { return true })
	slices.SortFunc(batches, byOpenedAt)
	return batches, nil
}

// GetLatest returns the most recently opened batch.
func (r *GormBatchRepository) GetLatest(ctx context.Context) (*batch.Batch, error) {
	batches, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, errs.NewObjectNotFoundError("batch", "latest")
	}
	return batches[len(batches)-1], nil
}

// Write persists a tracked batch inside the committing transaction.
func (r *GormBatchRepository) Write(ctx context.Context, op tracking.Operation, b *batch.Batch) (int, error) {
	dto := fromDomain(b)
	db := r.db.WithContext(ctx)

	switch op {
	case tracking.Insert:
		dto.Version = 1
		return 1, db.Create(&dto).Error
	case tracking.Update:
		expected := dto.Version
		dto.Version = expected + 1
		result := db.Model(&BatchDTO{}).
			Where("id = ? AND version = ?", dto.ID, expected).
			Select("*").Omit("id").
			Updates(&dto)
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			return 0, errs.NewConcurrencyConflictError(tracking.KindBatch, b.ID().String(), expected)
		}
		return dto.Version, nil
	case tracking.Delete:
		result := db.Where("id = ? AND version = ?", dto.ID, dto.Version).Delete(&BatchDTO{})
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			return 0, errs.NewConcurrencyConflictError(tracking.KindBatch, b.ID().String(), dto.Version)
		}
		return 0, nil
	default:
		return b.Version(), nil
	}
}

func (r *GormBatchRepository) load(dto BatchDTO) (*batch.Batch, error) {
	b, err := toDomain(dto)
	if err != nil {
		return nil, err
	}
	return r.tracker.Load(tracking.KindBatch, b.ID().String(), b).(*batch.Batch), nil
}

func fromDomain(b *batch.Batch) BatchDTO {
	return BatchDTO{
		ID:          b.ID().Google(),
		Status:      b.Status().String(),
		OpenedAt:    b.OpenedAt(),
		ClosedAt:    b.ClosedAt(),
		TotalOrders: b.TotalOrders(),
		Version:     b.Version(),
	}
}

func toDomain(dto BatchDTO) (*batch.Batch, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	status, err := batch.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var closedAt *time.Time
	if dto.ClosedAt != nil {
		at := dto.ClosedAt.UTC()
		closedAt = &at
	}
	return batch.RestoreBatch(id, status, dto.OpenedAt.UTC(), closedAt, dto.TotalOrders, dto.Version)
}

func byOpenedAt(a, b *batch.Batch) int {
	if c := a.OpenedAt().Compare(b.OpenedAt()); c != 0 {
		return c
	}
	return a.ID().Compare(b.ID())
}
