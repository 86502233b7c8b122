package ports

import (
	"context"

	"lastmile/internal/pkg/ddd"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// It tracks the aggregates touched through its repositories and, on Commit,
// dispatches their domain events until no more are queued before writing all
// tracked aggregates atomically.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit drains and dispatches domain events, persists every tracked
	// aggregate and commits. Any failure leaves the store untouched.
	Commit(ctx context.Context) error

	// Rollback discards tracked changes and the open transaction.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	RouteRepository() RouteRepository
	BatchRepository() BatchRepository
	DriverRepository() DriverRepository
}

// DomainEventDispatcher delivers a domain event to its in-process handlers. It is
// invoked by UnitOfWork.Commit with the committing unit of work, so handlers load
// and track aggregates within the same transaction.
type DomainEventDispatcher interface {
	Dispatch(ctx context.Context, uow UnitOfWork, event ddd.DomainEvent) error
}
