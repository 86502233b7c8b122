// Package driverrepo persists drivers in the drivers table.
package driverrepo

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"lastmile/internal/adapters/out/tracking"
	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DriverDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name      string     `gorm:"type:varchar(255);not null"`
	ZoneID    *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"not null"`
	Version   int        `gorm:"not null"`
}

func (DriverDTO) TableName() string {
	return "drivers"
}

// GormDriverRepository implements ports.DriverRepository using GORM.
type GormDriverRepository struct {
	db      *gorm.DB
	tracker *tracking.Tracker
}

func NewGormDriverRepository(db *gorm.DB, tracker *tracking.Tracker) *GormDriverRepository {
	return &GormDriverRepository{db: db, tracker: tracker}
}

func (r *GormDriverRepository) Add(_ context.Context, aggregate *driver.Driver) error {
	return r.track(aggregate, tracking.Insert)
}

func (r *GormDriverRepository) Update(_ context.Context, aggregate *driver.Driver) error {
	return r.track(aggregate, tracking.Update)
}

func (r *GormDriverRepository) Remove(_ context.Context, aggregate *driver.Driver) error {
	return r.track(aggregate, tracking.Delete)
}

func (r *GormDriverRepository) track(aggregate *driver.Driver, op tracking.Operation) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.tracker.Track(tracking.KindDriver, aggregate.ID().String(), aggregate, op)
}

func (r *GormDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if tracked, ok := r.tracker.Lookup(tracking.KindDriver, id.String()); ok {
		return tracked.(*driver.Driver), nil
	}
	if r.tracker.IsDeleted(tracking.KindDriver, id.String()) {
		return nil, errs.NewObjectNotFoundError("driver", id.String())
	}

	var dto DriverDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("driver", id.String())
		}
		return nil, err
	}
	return r.load(dto)
}

// GetAll returns every driver ordered by name.
func (r *GormDriverRepository) GetAll(ctx context.Context) ([]*driver.Driver, error) {
	var dtos []DriverDTO
	if err := r.db.WithContext(ctx).Find(&dtos).Error; err != nil {
		return nil, err
	}

	stored := make([]*driver.Driver, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		stored = append(stored, d)
	}

	drivers := tracking.MergeLoaded(r.tracker, tracking.KindDriver, stored,
		func(d *driver.Driver) string { return d.ID().String() },
		func(*driver.Driver) bool { return true })
	slices.SortFunc(drivers, func(a, b *driver.Driver) int {
		if c := strings.Compare(a.Name(), b.Name()); c != 0 {
			return c
		}
		return a.ID().Compare(b.ID())
	})
	return drivers, nil
}

// Write persists a tracked driver inside the committing transaction.
func (r *GormDriverRepository) Write(ctx context.Context, op tracking.Operation, d *driver.Driver) (int, error) {
	dto := fromDomain(d)
	db := r.db.WithContext(ctx)

	switch op {
	case tracking.Insert:
		dto.Version = 1
		return 1, db.Create(&dto).Error
	case tracking.Update:
		expected := dto.Version
		dto.Version = expected + 1
		result := db.Model(&DriverDTO{}).
			Where("id = ? AND version = ?", dto.ID, expected).
			Select("*").Omit("id").
			Updates(&dto)
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			return 0, errs.NewConcurrencyConflictError(tracking.KindDriver, d.ID().String(), expected)
		}
		return dto.Version, nil
	case tracking.Delete:
		result := db.Where("id = ? AND version = ?", dto.ID, dto.Version).Delete(&DriverDTO{})
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 0 {
			return 0, errs.NewConcurrencyConflictError(tracking.KindDriver, d.ID().String(), dto.Version)
		}
		return 0, nil
	default:
		return d.Version(), nil
	}
}

func (r *GormDriverRepository) load(dto DriverDTO) (*driver.Driver, error) {
	d, err := toDomain(dto)
	if err != nil {
		return nil, err
	}
	return r.tracker.Load(tracking.KindDriver, d.ID().String(), d).(*driver.Driver), nil
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	var zoneID *kernel.UUID
	if dto.ZoneID != nil {
		z, zoneErr := kernel.UUIDFromGoogle(*dto.ZoneID)
		if zoneErr != nil {
			return nil, zoneErr
		}
		zoneID = &z
	}
	return driver.RestoreDriver(id, dto.Name, zoneID, dto.CreatedAt.UTC(), dto.Version)
}

func fromDomain(d *driver.Driver) DriverDTO {
	dto := DriverDTO{
		ID:        d.ID().Google(),
		Name:      d.Name(),
		CreatedAt: d.CreatedAt(),
		Version:   d.Version(),
	}
	if z := d.ZoneID(); z != nil {
		raw := z.Google()
		dto.ZoneID = &raw
	}
	return dto
}
