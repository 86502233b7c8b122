// Package postgres provides the GORM implementation of the unit of work.
//
// A unit of work opens one database transaction in Begin. Repositories obtained
// from it read through that transaction and register their writes with a
// tracker; nothing is written until Commit, which
//
//	1. dispatches the domain events of every tracked aggregate until none are queued
//	2. flushes each tracked aggregate with an optimistic version check
//	3. inserts one outbox message per dispatched event
//	4. commits the transaction
//
// Any failure rolls the transaction back, so state changes and their outbox
// messages are stored together or not at all.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lastmile/internal/adapters/out/outbox"
	"lastmile/internal/adapters/out/postgres/batchrepo"
	"lastmile/internal/adapters/out/postgres/driverrepo"
	"lastmile/internal/adapters/out/postgres/orderrepo"
	"lastmile/internal/adapters/out/postgres/outboxrepo"
	"lastmile/internal/adapters/out/postgres/routerepo"
	"lastmile/internal/adapters/out/tracking"
	"lastmile/internal/core/domain/model/batch"
	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/ddd"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/metrics"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// ErrNoActiveTransaction is returned by Commit and Rollback outside Begin.
var ErrNoActiveTransaction = errors.New("unit of work has no active transaction")

// GormUnitOfWorkFactory creates units of work over one database connection.
// Each Create call returns an independent instance; instances must not be shared
// between goroutines.
type GormUnitOfWorkFactory struct {
	db         *gorm.DB
	dispatcher ports.DomainEventDispatcher
	metrics    *metrics.Metrics
	now        func() time.Time
	maxRounds  int
}

type Option func(*GormUnitOfWorkFactory)

// WithMetrics records commits and dispatched events on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *GormUnitOfWorkFactory) { f.metrics = m }
}

// WithClock sets the clock stamping outbox messages.
func WithClock(now func() time.Time) Option {
	return func(f *GormUnitOfWorkFactory) { f.now = now }
}

// WithMaxDispatchRounds overrides ddd.DefaultMaxDispatchRounds.
func WithMaxDispatchRounds(n int) Option {
	return func(f *GormUnitOfWorkFactory) { f.maxRounds = n }
}

// NewGormUnitOfWorkFactory creates a factory. dispatcher may be nil, in which
// case events are only written to the outbox.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db, nil, WithMetrics(m))
func NewGormUnitOfWorkFactory(db *gorm.DB, dispatcher ports.DomainEventDispatcher, opts ...Option) *GormUnitOfWorkFactory {
	f := &GormUnitOfWorkFactory{
		db:         db,
		dispatcher: dispatcher,
		now:        time.Now,
		maxRounds:  ddd.DefaultMaxDispatchRounds,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetDispatcher replaces the dispatcher once the event handlers, which need the
// factory themselves, are built.
func (f *GormUnitOfWorkFactory) SetDispatcher(dispatcher ports.DomainEventDispatcher) {
	f.dispatcher = dispatcher
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{factory: f, tracker: tracking.NewTracker()}
}

// GormUnitOfWork coordinates one database transaction and the aggregates
// touched through its repositories.
type GormUnitOfWork struct {
	factory *GormUnitOfWorkFactory
	tracker *tracking.Tracker
	tx      *gorm.DB
}

// Begin opens the transaction. Calling Begin on an active unit of work does
// nothing.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.factory.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	uow.tracker.Reset()
	uow.tx = tx
	return nil
}

func (uow *GormUnitOfWork) Commit(ctx context.Context) (err error) {
	if uow.tx == nil {
		return ErrNoActiveTransaction
	}

	f := uow.factory
	start := time.Now()
	defer func() { f.metrics.RecordCommit(tracking.CommitResult(err), time.Since(start)) }()

	tx := uow.tx.WithContext(ctx)
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
			uow.tx = nil
			uow.tracker.Reset()
		}
	}()

	events, err := ddd.DrainEvents(ctx, uow.tracker.Aggregates, uow.dispatch, f.maxRounds)
	if err != nil {
		return err
	}
	messages, err := outbox.NewMessages(events, f.now())
	if err != nil {
		return err
	}

	written := uow.tracker.Written()
	versions := make(map[*tracking.Entry]int, len(written))
	for _, e := range written {
		v, writeErr := uow.write(ctx, tx, e)
		if writeErr != nil {
			return mapWriteError(e, writeErr)
		}
		versions[e] = v
	}

	if err = outboxrepo.Insert(ctx, tx, messages); err != nil {
		return fmt.Errorf("insert outbox messages: %w", err)
	}
	if err = tx.Commit().Error; err != nil {
		return err
	}
	committed = true

	for e, v := range versions {
		if e.Operation != tracking.Delete {
			e.Aggregate.SetVersion(v)
		}
	}
	uow.tx = nil
	uow.tracker.Reset()
	return nil
}

// Rollback discards the transaction and every tracked aggregate. Aggregate
// instances keep their in-memory changes; callers must not reuse them.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	uow.tracker.Reset()
	if uow.tx == nil {
		return ErrNoActiveTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.session(), uow.tracker)
}

func (uow *GormUnitOfWork) RouteRepository() ports.RouteRepository {
	return routerepo.NewGormRouteRepository(uow.session(), uow.tracker)
}

func (uow *GormUnitOfWork) BatchRepository() ports.BatchRepository {
	return batchrepo.NewGormBatchRepository(uow.session(), uow.tracker)
}

func (uow *GormUnitOfWork) DriverRepository() ports.DriverRepository {
	return driverrepo.NewGormDriverRepository(uow.session(), uow.tracker)
}

// session returns the open transaction, or the plain connection outside Begin.
func (uow *GormUnitOfWork) session() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.factory.db
}

func (uow *GormUnitOfWork) write(ctx context.Context, tx *gorm.DB, e *tracking.Entry) (int, error) {
	switch agg := e.Aggregate.(type) {
	case *order.Order:
		return orderrepo.NewGormOrderRepository(tx, uow.tracker).Write(ctx, e.Operation, agg)
	case *route.Route:
		return routerepo.NewGormRouteRepository(tx, uow.tracker).Write(ctx, e.Operation, agg)
	case *batch.Batch:
		return batchrepo.NewGormBatchRepository(tx, uow.tracker).Write(ctx, e.Operation, agg)
	case *driver.Driver:
		return driverrepo.NewGormDriverRepository(tx, uow.tracker).Write(ctx, e.Operation, agg)
	default:
		return 0, fmt.Errorf("postgres store cannot persist %T", e.Aggregate)
	}
}

func (uow *GormUnitOfWork) dispatch(ctx context.Context, event ddd.DomainEvent) error {
	uow.factory.metrics.RecordEventDispatched(event.EventName())
	if uow.factory.dispatcher == nil {
		return nil
	}
	return uow.factory.dispatcher.Dispatch(ctx, uow, event)
}

// mapWriteError reports a concurrent insert of the same key as a conflict.
func mapWriteError(e *tracking.Entry, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errs.NewConcurrencyConflictErrorWithCause(e.Kind, e.ID, err)
	}
	return err
}

// Migrate creates or updates every table of the store.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&batchrepo.BatchDTO{},
		&driverrepo.DriverDTO{},
		&routerepo.RouteDTO{},
		&routerepo.RouteStopDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&outboxrepo.OutboxMessageDTO{},
	)
}
