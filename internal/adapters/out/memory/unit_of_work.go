package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lastmile/internal/adapters/out/outbox"
	"lastmile/internal/adapters/out/tracking"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/ddd"
	"lastmile/internal/pkg/metrics"
)

// ErrNoActiveTransaction is returned by Commit and Rollback outside Begin.
var ErrNoActiveTransaction = errors.New("unit of work has no active transaction")

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store      *Store
	dispatcher ports.DomainEventDispatcher
	metrics    *metrics.Metrics
	now        func() time.Time
	maxRounds  int
}

// Option configures the factory.
type Option func(*UnitOfWorkFactory)

// WithMetrics records commits and dispatched events on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *UnitOfWorkFactory) { f.metrics = m }
}

// WithClock sets the clock stamping outbox messages.
func WithClock(now func() time.Time) Option {
	return func(f *UnitOfWorkFactory) { f.now = now }
}

// WithMaxDispatchRounds overrides ddd.DefaultMaxDispatchRounds.
func WithMaxDispatchRounds(n int) Option {
	return func(f *UnitOfWorkFactory) { f.maxRounds = n }
}

// NewUnitOfWorkFactory creates a factory. dispatcher may be nil, in which case
// events are only written to the outbox.
func NewUnitOfWorkFactory(store *Store, dispatcher ports.DomainEventDispatcher, opts ...Option) *UnitOfWorkFactory {
	f := &UnitOfWorkFactory{
		store:      store,
		dispatcher: dispatcher,
		now:        time.Now,
		maxRounds:  ddd.DefaultMaxDispatchRounds,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetDispatcher replaces the dispatcher. Event handlers need a factory of their
// own, so the composition root creates the factory first and wires the
// dispatcher afterwards.
func (f *UnitOfWorkFactory) SetDispatcher(dispatcher ports.DomainEventDispatcher) {
	f.dispatcher = dispatcher
}

// Create returns a fresh unit of work.
func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{factory: f, tracker: tracking.NewTracker()}
}

// UnitOfWork tracks aggregates in memory until Commit applies them to the Store.
type UnitOfWork struct {
	factory *UnitOfWorkFactory
	tracker *tracking.Tracker
	active  bool
}

// Begin starts tracking. Calling Begin on an active unit of work does nothing.
func (uow *UnitOfWork) Begin(_ context.Context) error {
	if uow.active {
		return nil
	}
	uow.tracker.Reset()
	uow.active = true
	return nil
}

// Commit drains domain events through the dispatcher, then applies every tracked
// write and the outbox messages of the dispatched events in one step.
func (uow *UnitOfWork) Commit(ctx context.Context) (err error) {
	if !uow.active {
		return ErrNoActiveTransaction
	}

	f := uow.factory
	start := time.Now()
	defer func() { f.metrics.RecordCommit(tracking.CommitResult(err), time.Since(start)) }()

	events, err := ddd.DrainEvents(ctx, uow.tracker.Aggregates, uow.dispatch, f.maxRounds)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	messages, err := outbox.NewMessages(events, f.now())
	if err != nil {
		return err
	}

	written := uow.tracker.Written()
	versions, err := f.store.apply(written, messages)
	if err != nil {
		return err
	}

	for _, e := range written {
		if v, ok := versions[e]; ok {
			e.Aggregate.SetVersion(v)
		}
	}
	uow.tracker.Reset()
	uow.active = false
	return nil
}

// Rollback forgets every tracked aggregate. In-memory aggregate instances keep
// their changes; callers must not reuse them.
func (uow *UnitOfWork) Rollback(_ context.Context) error {
	uow.tracker.Reset()
	if !uow.active {
		return ErrNoActiveTransaction
	}
	uow.active = false
	return nil
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &orderRepository{uow: uow}
}

func (uow *UnitOfWork) RouteRepository() ports.RouteRepository {
	return &routeRepository{uow: uow}
}

func (uow *UnitOfWork) BatchRepository() ports.BatchRepository {
	return &batchRepository{uow: uow}
}

func (uow *UnitOfWork) DriverRepository() ports.DriverRepository {
	return &driverRepository{uow: uow}
}

func (uow *UnitOfWork) dispatch(ctx context.Context, event ddd.DomainEvent) error {
	uow.factory.metrics.RecordEventDispatched(event.EventName())
	if uow.factory.dispatcher == nil {
		return nil
	}
	return uow.factory.dispatcher.Dispatch(ctx, uow, event)
}

func errUnsupportedAggregate(aggregate ddd.AggregateRoot) error {
	return fmt.Errorf("memory store cannot persist %T", aggregate)
}
