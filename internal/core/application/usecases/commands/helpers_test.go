package commands_test

import (
	"context"
	"testing"
	"time"

	"lastmile/internal/adapters/out/calculator"
	"lastmile/internal/adapters/out/memory"
	"lastmile/internal/core/application/eventhandlers"
	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/batch"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/pkg/metrics"

	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/require"
)

var (
	fake  = faker.New()
	day   = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	depot = kernel.MustGeoPoint(52.5200, 13.4050)
)

// env wires command handlers to an in-memory store with the delivery reactions
// registered, the way the composition root wires the postgres factory.
type env struct {
	store   *memory.Store
	uows    commands.UoWFactory
	drivers commands.DriverUoWFactory
	metrics *metrics.Metrics
}

func newEnv(t *testing.T) env {
	t.Helper()
	m := metrics.New("test")
	store := memory.NewStore()
	factory := memory.NewUnitOfWorkFactory(store, nil, memory.WithMetrics(m))

	registry := eventhandlers.NewRegistry(nil)
	eventhandlers.RegisterDeliveryReactions(registry, services.NewRouteCompletionService(nil), m, nil)
	factory.SetDispatcher(registry)

	uows, drivers := commands.AdaptFactory(factory)
	return env{store: store, uows: uows, drivers: drivers, metrics: m}
}

func randomAddress(t *testing.T) order.Address {
	t.Helper()
	a := fake.Address()
	address, err := order.NewAddress(a.StreetAddress(), a.City(), a.PostCode(), a.CountryAbbr())
	require.NoError(t, err)
	return address
}

// randomLocation returns a point in central Berlin.
func randomLocation() kernel.GeoPoint {
	return kernel.MustGeoPoint(52.48+fake.Float64(4, 0, 1)/10, 13.35+fake.Float64(4, 0, 1)/10)
}

func (e env) createBatch(t *testing.T) kernel.UUID {
	t.Helper()
	id := kernel.NewUUID()
	cmd, err := commands.NewCreateBatchCommand(id)
	require.NoError(t, err)
	require.NoError(t, commands.NewCreateBatchCommandHandler(e.uows).Handle(t.Context(), cmd))
	return id
}

func (e env) newOrderCommand(t *testing.T, batchID *kernel.UUID) commands.CreateOrderCommand {
	t.Helper()
	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(),
		batchID,
		kernel.NewUUID(),
		randomAddress(t),
		randomLocation(),
		day,
		[]commands.OrderLine{{ProductID: kernel.NewUUID(), Quantity: fake.IntBetween(1, 5)}},
	)
	require.NoError(t, err)
	return cmd
}

func (e env) createOrder(t *testing.T, batchID kernel.UUID) kernel.UUID {
	t.Helper()
	cmd := e.newOrderCommand(t, &batchID)
	require.NoError(t, commands.NewCreateOrderCommandHandler(e.uows).Handle(t.Context(), cmd))
	return cmd.OrderID()
}

func (e env) createDriver(t *testing.T) kernel.UUID {
	t.Helper()
	id := kernel.NewUUID()
	cmd, err := commands.NewCreateDriverCommand(id, fake.Person().Name(), nil)
	require.NoError(t, err)
	require.NoError(t, commands.NewCreateDriverCommandHandler(e.drivers).Handle(t.Context(), cmd))
	return id
}

func (e env) createRoute(t *testing.T, batchID kernel.UUID) kernel.UUID {
	t.Helper()
	id := kernel.NewUUID()
	cmd, err := commands.NewCreateRouteCommand(id, batchID, nil, day)
	require.NoError(t, err)
	require.NoError(t, commands.NewCreateRouteCommandHandler(e.uows).Handle(t.Context(), cmd))
	return id
}

func (e env) assignDriver(t *testing.T, routeID, driverID kernel.UUID) {
	t.Helper()
	cmd, err := commands.NewAssignDriverCommand(routeID, driverID)
	require.NoError(t, err)
	require.NoError(t, commands.NewAssignDriverCommandHandler(e.uows).Handle(t.Context(), cmd))
}

func (e env) planHandler() commands.PlanRouteCommandHandler {
	return commands.NewPlanRouteCommandHandler(e.uows, calculator.NewNearestNeighborCalculator(e.metrics), depot, time.Second)
}

func (e env) plan(t *testing.T, routeID kernel.UUID, orderIDs ...kernel.UUID) {
	t.Helper()
	cmd, err := commands.NewPlanRouteCommand(routeID, orderIDs)
	require.NoError(t, err)
	_, err = e.planHandler().Handle(t.Context(), cmd)
	require.NoError(t, err)
}

func (e env) startRoute(t *testing.T, routeID kernel.UUID) error {
	t.Helper()
	cmd, err := commands.NewStartRouteCommand(routeID)
	require.NoError(t, err)
	return commands.NewStartRouteCommandHandler(e.uows).Handle(t.Context(), cmd)
}

func (e env) deliver(t *testing.T, orderID, driverID kernel.UUID) error {
	t.Helper()
	cmd, err := commands.NewDeliverOrderCommand(orderID, driverID, randomLocation(), "left at the door", "")
	require.NoError(t, err)
	return commands.NewDeliverOrderCommandHandler(e.uows).Handle(t.Context(), cmd)
}

func (e env) completeRoute(t *testing.T, routeID kernel.UUID) (bool, error) {
	t.Helper()
	cmd, err := commands.NewCompleteRouteCommand(routeID)
	require.NoError(t, err)
	return commands.NewCompleteRouteCommandHandler(e.uows, services.NewRouteCompletionService(nil)).Handle(t.Context(), cmd)
}

// plannedRoute creates a batch, a driver and a route with n planned orders.
func (e env) plannedRoute(t *testing.T, n int) (routeID, driverID kernel.UUID, orderIDs []kernel.UUID) {
	t.Helper()
	batchID := e.createBatch(t)
	driverID = e.createDriver(t)
	routeID = e.createRoute(t, batchID)
	e.assignDriver(t, routeID, driverID)
	for range n {
		orderIDs = append(orderIDs, e.createOrder(t, batchID))
	}
	e.plan(t, routeID, orderIDs...)
	return routeID, driverID, orderIDs
}

func (e env) read(t *testing.T, fn func(ctx context.Context, uow commands.UoW)) {
	t.Helper()
	ctx := t.Context()
	uow := e.uows.Create()
	require.NoError(t, uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()
	fn(ctx, uow)
}

func (e env) order(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	var o *order.Order
	e.read(t, func(ctx context.Context, uow commands.UoW) {
		var err error
		o, err = uow.OrderRepository().Get(ctx, id)
		require.NoError(t, err)
	})
	return o
}

func (e env) route(t *testing.T, id kernel.UUID) *route.Route {
	t.Helper()
	var r *route.Route
	e.read(t, func(ctx context.Context, uow commands.UoW) {
		var err error
		r, err = uow.RouteRepository().Get(ctx, id)
		require.NoError(t, err)
	})
	return r
}

func (e env) batch(t *testing.T, id kernel.UUID) *batch.Batch {
	t.Helper()
	var b *batch.Batch
	e.read(t, func(ctx context.Context, uow commands.UoW) {
		var err error
		b, err = uow.BatchRepository().Get(ctx, id)
		require.NoError(t, err)
	})
	return b
}
