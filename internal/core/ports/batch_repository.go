package ports

import (
	"context"

	"lastmile/internal/core/domain/model/batch"
	"lastmile/internal/core/domain/model/kernel"
)

// BatchRepository defines the persistence contract for batch aggregates.
type BatchRepository interface {
	Add(ctx context.Context, aggregate *batch.Batch) error
	Update(ctx context.Context, aggregate *batch.Batch) error
	Remove(ctx context.Context, aggregate *batch.Batch) error
	Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error)
	GetAll(ctx context.Context) ([]*batch.Batch, error)

	// GetLatest returns the most recently opened batch, or errs.ObjectNotFoundError.
	GetLatest(ctx context.Context) (*batch.Batch, error)
}
