// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"lastmile/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Domain events raised by the aggregates a handler changes are dispatched by
// Commit, so a single command may end up changing more aggregates than it loads.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// RouteRepoFactory provides access to route repository within a transaction.
	RouteRepoFactory interface {
		RouteRepository() ports.RouteRepository
	}

	// BatchRepoFactory provides access to batch repository within a transaction.
	BatchRepoFactory interface {
		BatchRepository() ports.BatchRepository
	}

	// DriverRepoFactory provides access to driver repository within a transaction.
	DriverRepoFactory interface {
		DriverRepository() ports.DriverRepository
	}

	// DriverUoW manages transactions for driver-only operations.
	DriverUoW interface {
		TxManager
		DriverRepoFactory
	}

	// DriverUoWFactory creates new driver unit of work instances.
	DriverUoWFactory interface {
		Create() DriverUoW
	}

	// UoW manages transactions across orders, routes, batches and drivers.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   r, err := uow.RouteRepository().Get(ctx, routeID)
	//   // ... change r
	//   err = uow.RouteRepository().Update(ctx, r)
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		RouteRepoFactory
		BatchRepoFactory
		DriverRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

// FuncUoWFactory adapts a function to UoWFactory.
type FuncUoWFactory func() UoW

func (f FuncUoWFactory) Create() UoW {
	return f()
}

// FuncDriverUoWFactory adapts a function to DriverUoWFactory.
type FuncDriverUoWFactory func() DriverUoW

func (f FuncDriverUoWFactory) Create() DriverUoW {
	return f()
}

// AdaptFactory exposes a ports.UnitOfWorkFactory as the factories command
// handlers depend on.
func AdaptFactory(f ports.UnitOfWorkFactory) (UoWFactory, DriverUoWFactory) {
	return FuncUoWFactory(func() UoW { return f.Create() }),
		FuncDriverUoWFactory(func() DriverUoW { return f.Create() })
}
