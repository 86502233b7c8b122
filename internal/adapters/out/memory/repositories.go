package memory

import (
	"cmp"
	"context"
	"slices"

	"lastmile/internal/adapters/out/tracking"
	"lastmile/internal/core/domain/model/batch"
	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"
)

type orderRepository struct{ uow *UnitOfWork }

func (r *orderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.tracker.Track(tracking.KindOrder, aggregate.ID().String(), aggregate, tracking.Insert)
}

func (r *orderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.tracker.Track(tracking.KindOrder, aggregate.ID().String(), aggregate, tracking.Update)
}

func (r *orderRepository) Remove(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.tracker.Track(tracking.KindOrder, aggregate.ID().String(), aggregate, tracking.Delete)
}

func (r *orderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	t := r.uow.tracker
	if tracked, ok := t.Lookup(tracking.KindOrder, id.String()); ok {
		return tracked.(*order.Order), nil
	}
	snap, ok := r.uow.factory.store.order(id)
	if !ok || t.IsDeleted(tracking.KindOrder, id.String()) {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	o, err := order.RestoreOrder(snap)
	if err != nil {
		return nil, err
	}
	return t.Load(tracking.KindOrder, id.String(), o).(*order.Order), nil
}

func (r *orderRepository) GetAll(_ context.Context) ([]*order.Order, error) {
	orders, err := r.find(func(order.Snapshot) bool { return true }, func(*order.Order) bool { return true })
	if err != nil {
		return nil, err
	}
	slices.SortFunc(orders, byCreatedAt)
	return orders, nil
}

func (r *orderRepository) GetByRouteID(_ context.Context, routeID kernel.UUID) ([]*order.Order, error) {
	orders, err := r.find(
		func(s order.Snapshot) bool { return s.RouteID != nil && s.RouteID.IsEqual(routeID) },
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

func (r *orderRepository) GetByBatchID(_ context.Context, batchID kernel.UUID) ([]*order.Order, error) {
	orders, err := r.find(
		func(s order.Snapshot) bool { return s.BatchID.IsEqual(batchID) },
		func(o *order.Order) bool { return o.BatchID().IsEqual(batchID) },
	)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(orders, byCreatedAt)
	return orders, nil
}

func (r *orderRepository) find(match func(order.Snapshot) bool, keep func(*order.Order) bool) ([]*order.Order, error) {
	snaps := r.uow.factory.store.findOrders(match)
	stored := make([]*order.Order, 0, len(snaps))
	for _, snap := range snaps {
		o, err := order.RestoreOrder(snap)
		if err != nil {
			return nil, err
		}
		stored = append(stored, o)
	}
	return tracking.MergeLoaded(r.uow.tracker, tracking.KindOrder, stored,
		func(o *order.Order) string { return o.ID().String() }, keep), nil
}

func byCreatedAt(a, b *order.Order) int {
	if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
		return c
	}
	return a.ID().Compare(b.ID())
}

type routeRepository struct{ uow *UnitOfWork }

func (r *routeRepository) Add(_ context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.tracker.Track(tracking.KindRoute, aggregate.ID().String(), aggregate, tracking.Insert)
}

func (r *routeRepository) Update(_ context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.tracker.Track(tracking.KindRoute, aggregate.ID().String(), aggregate, tracking.Update)
}

func (r *routeRepository) Remove(_ context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.tracker.Track(tracking.KindRoute, aggregate.ID().String(), aggregate, tracking.Delete)
}

func (r *routeRepository) Get(_ context.Context, id kernel.UUID) (*route.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	t := r.uow.tracker
	if tracked, ok := t.Lookup(tracking.KindRoute, id.String()); ok {
		return tracked.(*route.Route), nil
	}
	snap, ok := r.uow.factory.store.route(id)
	if !ok || t.IsDeleted(tracking.KindRoute, id.String()) {
		return nil, errs.NewObjectNotFoundError("route", id.String())
	}
	rt, err := route.RestoreRoute(snap)
	if err != nil {
		return nil, err
	}
	return t.Load(tracking.KindRoute, id.String(), rt).(*route.Route), nil
}

func (r *routeRepository) GetAll(_ context.Context) ([]*route.Route, error) {
	routes, err := r.find(func(route.Snapshot) bool { return true }, func(*route.Route) bool { return true })
	if err != nil {
		return nil, err
	}
	slices.SortFunc(routes, func(a, b *route.Route) int {
		if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
			return c
		}
		return a.ID().Compare(b.ID())
	})
	return routes, nil
}

func (r *routeRepository) GetInProgressByZone(_ context.Context, zoneID kernel.UUID) (*route.Route, error) {
	inZone := func(z *kernel.UUID) bool { return z != nil && z.IsEqual(zoneID) }
	routes, err := r.find(
		func(s route.Snapshot) bool { return s.Status == route.InProgress && inZone(s.ZoneID) },
		func(rt *route.Route) bool { return rt.Status() == route.InProgress && inZone(rt.ZoneID()) },
	)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, errs.NewObjectNotFoundError("active route in zone", zoneID.String())
	}
	slices.SortFunc(routes, byStartedAt)
	return routes[0], nil
}

func (r *routeRepository) GetAllInProgress(_ context.Context) ([]*route.Route, error) {
	routes, err := r.find(
		func(s route.Snapshot) bool { return s.Status == route.InProgress },
		func(rt *route.Route) bool { return rt.Status() == route.InProgress },
	)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(routes, byStartedAt)
	return routes, nil
}

func (r *routeRepository) find(match func(route.Snapshot) bool, keep func(*route.Route) bool) ([]*route.Route, error) {
	snaps := r.uow.factory.store.findRoutes(match)
	stored := make([]*route.Route, 0, len(snaps))
	for _, snap := range snaps {
		rt, err := route.RestoreRoute(snap)
		if err != nil {
			return nil, err
		}
		stored = append(stored, rt)
	}
	return tracking.MergeLoaded(r.uow.tracker, tracking.KindRoute, stored,
		func(rt *route.Route) string { return rt.ID().String() }, keep), nil
}

func byStartedAt(a, b *route.Route) int {
	if a.StartedAt() != nil && b.StartedAt() != nil {
		if c := a.StartedAt().Compare(*b.StartedAt()); c != 0 {
			return c
		}
	}
	return a.ID().Compare(b.ID())
}

type batchRepository struct{ uow *UnitOfWork }

func (r *batchRepository) Add(_ context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.tracker.Track(tracking.KindBatch, aggregate.ID().String(), aggregate, tracking.Insert)
}

func (r *batchRepository) Update(_ context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.tracker.Track(tracking.KindBatch, aggregate.ID().String(), aggregate, tracking.Update)
}

func (r *batchRepository) Remove(_ context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.tracker.Track(tracking.KindBatch, aggregate.ID().String(), aggregate, tracking.Delete)
}

func (r *batchRepository) Get(_ context.Context, id kernel.UUID) (*batch.Batch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	t := r.uow.tracker
	if tracked, ok := t.Lookup(tracking.KindBatch, id.String()); ok {
		return tracked.(*batch.Batch), nil
	}
	b, ok, err := r.uow.factory.store.batch(id)
	if err != nil {
		return nil, err
	}
	if !ok || t.IsDeleted(tracking.KindBatch, id.String()) {
		return nil, errs.NewObjectNotFoundError("batch", id.String())
	}
	return t.Load(tracking.KindBatch, id.String(), b).(*batch.Batch), nil
}

func (r *batchRepository) GetAll(_ context.Context) ([]*batch.Batch, error) {
	stored, err := r.uow.factory.store.allBatches()
	if err != nil {
		return nil, err
	}
	batches := tracking.MergeLoaded(r.uow.tracker, tracking.KindBatch, stored,
		func(b *batch.Batch) string { return b.ID().String() },
		func(*batch.Batch) bool { return true })
	slices.SortFunc(batches, func(a, b *batch.Batch) int {
		if c := a.OpenedAt().Compare(b.OpenedAt()); c != 0 {
			return c
		}
		return a.ID().Compare(b.ID())
	})
	return batches, nil
}

func (r *batchRepository) GetLatest(ctx context.Context) (*batch.Batch, error) {
	batches, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, errs.NewObjectNotFoundError("batch", "latest")
	}
	return batches[len(batches)-1], nil
}

type driverRepository struct{ uow *UnitOfWork }

func (r *driverRepository) Add(_ context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.tracker.Track(tracking.KindDriver, aggregate.ID().String(), aggregate, tracking.Insert)
}

func (r *driverRepository) Update(_ context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.tracker.Track(tracking.KindDriver, aggregate.ID().String(), aggregate, tracking.Update)
}

func (r *driverRepository) Remove(_ context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.tracker.Track(tracking.KindDriver, aggregate.ID().String(), aggregate, tracking.Delete)
}

func (r *driverRepository) Get(_ context.Context, id kernel.UUID) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	t := r.uow.tracker
	if tracked, ok := t.Lookup(tracking.KindDriver, id.String()); ok {
		return tracked.(*driver.Driver), nil
	}
	d, ok, err := r.uow.factory.store.driver(id)
	if err != nil {
		return nil, err
	}
	if !ok || t.IsDeleted(tracking.KindDriver, id.String()) {
		return nil, errs.NewObjectNotFoundError("driver", id.String())
	}
	return t.Load(tracking.KindDriver, id.String(), d).(*driver.Driver), nil
}

func (r *driverRepository) GetAll(_ context.Context) ([]*driver.Driver, error) {
	stored, err := r.uow.factory.store.allDrivers()
	if err != nil {
		return nil, err
	}
	drivers := tracking.MergeLoaded(r.uow.tracker, tracking.KindDriver, stored,
		func(d *driver.Driver) string { return d.ID().String() },
		func(*driver.Driver) bool { return true })
	slices.SortFunc(drivers, func(a, b *driver.Driver) int {
		if c := cmp.Compare(a.Name(), b.Name()); c != 0 {
			return c
		}
		return a.ID().Compare(b.ID())
	})
	return drivers, nil
}
