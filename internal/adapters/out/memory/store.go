// Package memory provides an in-process implementation of the unit of work and
// repositories. It keeps committed state as snapshots, so every unit of work
// works on its own aggregate instances, and applies commits atomically under a
// lock with the same optimistic version checks as the database adapter.
//
// It backs STORAGE=memory and the application tests.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"lastmile/internal/adapters/out/tracking"
	"lastmile/internal/core/domain/model/batch"
	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/ddd"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
)

type batchRow struct {
	status      batch.Status
	openedAt    time.Time
	closedAt    *time.Time
	totalOrders int
	version     int
}

type driverRow struct {
	name      string
	zoneID    *kernel.UUID
	createdAt time.Time
	version   int
}

// Store is the committed state shared by the units of work of one process.
// It also implements ports.OutboxStore.
type Store struct {
	mu sync.RWMutex

	orders  map[kernel.UUID]order.Snapshot
	routes  map[kernel.UUID]route.Snapshot
	batches map[kernel.UUID]batchRow
	drivers map[kernel.UUID]driverRow
	outbox  []ports.OutboxMessage
}

var _ ports.OutboxStore = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		orders:  make(map[kernel.UUID]order.Snapshot),
		routes:  make(map[kernel.UUID]route.Snapshot),
		batches: make(map[kernel.UUID]batchRow),
		drivers: make(map[kernel.UUID]driverRow),
	}
}

// GetUnpublished returns up to limit unpublished messages in commit order.
func (s *Store) GetUnpublished(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ports.OutboxMessage
	for _, msg := range s.outbox {
		if limit > 0 && len(out) == limit {
			break
		}
		if msg.PublishedAt == nil {
			out = append(out, msg)
		}
	}
	return out, nil
}

// MarkPublished stamps the messages with ids. Unknown ids are ignored.
func (s *Store) MarkPublished(_ context.Context, ids []uuid.UUID, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := publishedAt.UTC()
	for i := range s.outbox {
		if slices.Contains(ids, s.outbox[i].ID) {
			s.outbox[i].PublishedAt = &at
		}
	}
	return nil
}

// OutboxMessages returns every message ever committed, published or not.
func (s *Store) OutboxMessages() []ports.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.outbox)
}

func (s *Store) order(id kernel.UUID) (order.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.orders[id]
	return snap, ok
}

func (s *Store) findOrders(match func(order.Snapshot) bool) []order.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []order.Snapshot
	for _, snap := range s.orders {
		if match(snap) {
			out = append(out, snap)
		}
	}
	return out
}

func (s *Store) route(id kernel.UUID) (route.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.routes[id]
	return snap, ok
}

func (s *Store) findRoutes(match func(route.Snapshot) bool) []route.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []route.Snapshot
	for _, snap := range s.routes {
		if match(snap) {
			out = append(out, snap)
		}
	}
	return out
}

func (s *Store) batch(id kernel.UUID) (*batch.Batch, bool, error) {
	s.mu.RLock()
	row, ok := s.batches[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	b, err := batch.RestoreBatch(id, row.status, row.openedAt, row.closedAt, row.totalOrders, row.version)
	return b, true, err
}

func (s *Store) allBatches() ([]*batch.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*batch.Batch, 0, len(s.batches))
	for id, row := range s.batches {
		b, err := batch.RestoreBatch(id, row.status, row.openedAt, row.closedAt, row.totalOrders, row.version)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Store) driver(id kernel.UUID) (*driver.Driver, bool, error) {
	s.mu.RLock()
	row, ok := s.drivers[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	d, err := driver.RestoreDriver(id, row.name, row.zoneID, row.createdAt, row.version)
	return d, true, err
}

func (s *Store) allDrivers() ([]*driver.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*driver.Driver, 0, len(s.drivers))
	for id, row := range s.drivers {
		d, err := driver.RestoreDriver(id, row.name, row.zoneID, row.createdAt, row.version)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// apply checks every write against the stored versions and, when all pass,
// performs them and appends messages to the outbox. It returns the version
// written for each inserted or updated entry.
func (s *Store) apply(entries []*tracking.Entry, messages []ports.OutboxMessage) (map[*tracking.Entry]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions := make(map[*tracking.Entry]int, len(entries))
	for _, e := range entries {
		stored, exists, err := s.storedVersion(e.Aggregate)
		if err != nil {
			return nil, err
		}

		switch e.Operation {
		case tracking.Insert:
			if exists {
				return nil, errs.NewConcurrencyConflictErrorWithCause(e.Kind, e.ID,
					errors.New("an aggregate with this identifier already exists"))
			}
			versions[e] = 1
		case tracking.Update, tracking.Delete:
			if !exists || stored != e.Aggregate.Version() {
				return nil, errs.NewConcurrencyConflictError(e.Kind, e.ID, e.Aggregate.Version())
			}
			if e.Operation == tracking.Update {
				versions[e] = stored + 1
			}
		case tracking.Loaded:
		}
	}

	for _, e := range entries {
		if e.Operation == tracking.Delete {
			s.remove(e.Aggregate)
			continue
		}
		if version, ok := versions[e]; ok {
			s.put(e.Aggregate, version)
		}
	}
	s.outbox = append(s.outbox, messages...)

	return versions, nil
}

func (s *Store) storedVersion(aggregate ddd.AggregateRoot) (int, bool, error) {
	switch a := aggregate.(type) {
	case *order.Order:
		row, ok := s.orders[a.ID()]
		return row.Version, ok, nil
	case *route.Route:
		row, ok := s.routes[a.ID()]
		return row.Version, ok, nil
	case *batch.Batch:
		row, ok := s.batches[a.ID()]
		return row.version, ok, nil
	case *driver.Driver:
		row, ok := s.drivers[a.ID()]
		return row.version, ok, nil
	default:
		return 0, false, errUnsupportedAggregate(aggregate)
	}
}

func (s *Store) put(aggregate ddd.AggregateRoot, version int) {
	switch a := aggregate.(type) {
	case *order.Order:
		snap := a.Snapshot()
		snap.Version = version
		s.orders[a.ID()] = snap
	case *route.Route:
		snap := a.Snapshot()
		snap.Version = version
		s.routes[a.ID()] = snap
	case *batch.Batch:
		s.batches[a.ID()] = batchRow{
			status:      a.Status(),
			openedAt:    a.OpenedAt(),
			closedAt:    a.ClosedAt(),
			totalOrders: a.TotalOrders(),
			version:     version,
		}
	case *driver.Driver:
		s.drivers[a.ID()] = driverRow{
			name:      a.Name(),
			zoneID:    a.ZoneID(),
			createdAt: a.CreatedAt(),
			version:   version,
		}
	}
}

func (s *Store) remove(aggregate ddd.AggregateRoot) {
	switch a := aggregate.(type) {
	case *order.Order:
		delete(s.orders, a.ID())
	case *route.Route:
		delete(s.routes, a.ID())
	case *batch.Batch:
		delete(s.batches, a.ID())
	case *driver.Driver:
		delete(s.drivers, a.ID())
	}
}
