package ports

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Add, Update and Remove only register the aggregate with the unit of work the
// repository belongs to; the write happens when the unit of work commits. Reads
// return the instance already tracked by the unit of work when there is one.
type OrderRepository interface {
	// Add registers a new order for insertion.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update registers a changed order. The write is version-checked at commit.
	Update(ctx context.Context, aggregate *order.Order) error

	// Remove registers an order for deletion.
	Remove(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by identifier or returns errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAll returns every order ordered by creation time.
	GetAll(ctx context.Context) ([]*order.Order, error)

	// GetByRouteID returns the orders attached to routeID ordered by delivery sequence.
	GetByRouteID(ctx context.Context, routeID kernel.UUID) ([]*order.Order, error)

	// GetByBatchID returns the orders reserved on batchID ordered by creation time.
	GetByBatchID(ctx context.Context, batchID kernel.UUID) ([]*order.Order, error)
}
