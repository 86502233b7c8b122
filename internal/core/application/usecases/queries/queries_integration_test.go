package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "lastmile/internal/adapters/out/postgres"
	"lastmile/internal/adapters/out/postgres/pgtest"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/routing"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

// QueryHandlersIntegrationTestSuite runs the read-side handlers against data
// committed through the postgres unit of work.
type QueryHandlersIntegrationTestSuite struct {
	suite.Suite
	database *pgtest.Database
	factory  ports.UnitOfWorkFactory
}

func (s *QueryHandlersIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	s.Require().NoError(err)
	s.database = database
	s.factory = postgres_adapter.NewGormUnitOfWorkFactory(database.DB, nil)
}

func (s *QueryHandlersIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.database.Truncate())
}

func (s *QueryHandlersIntegrationTestSuite) TearDownSuite() {
	s.Require().NoError(s.database.Terminate(context.Background()))
}

// plannedRoute commits a route on zone with the given orders planned in order.
func (s *QueryHandlersIntegrationTestSuite) plannedRoute(zone *kernel.UUID, orders ...*order.Order) *route.Route {
	ctx := context.Background()
	r, err := route.NewRoute(kernel.NewUUID(), orders[0].BatchID(), zone, pgtest.Day, time.Now())
	s.Require().NoError(err)

	ids := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID())
	}
	ordered, err := routing.OrderedRouteFromIDs(ids)
	s.Require().NoError(err)
	s.Require().NoError(r.SetOrderedWaypoints(ordered, ids, time.Now()))

	uow := s.factory.Create()
	s.Require().NoError(uow.Begin(ctx))
	for i, o := range orders {
		s.Require().NoError(o.AssignToRoute(r.ID(), i+1))
		s.Require().NoError(uow.OrderRepository().Add(ctx, o))
	}
	s.Require().NoError(uow.RouteRepository().Add(ctx, r))
	s.Require().NoError(uow.Commit(ctx))
	return r
}

func (s *QueryHandlersIntegrationTestSuite) addOrders(orders ...*order.Order) {
	ctx := context.Background()
	uow := s.factory.Create()
	s.Require().NoError(uow.Begin(ctx))
	for _, o := range orders {
		s.Require().NoError(uow.OrderRepository().Add(ctx, o))
	}
	s.Require().NoError(uow.Commit(ctx))
}

func (s *QueryHandlersIntegrationTestSuite) startAndDeliverFirst(r *route.Route) {
	ctx := context.Background()
	uow := s.factory.Create()
	s.Require().NoError(uow.Begin(ctx))

	loaded, err := uow.RouteRepository().Get(ctx, r.ID())
	s.Require().NoError(err)
	driverID := kernel.NewUUID()
	s.Require().NoError(loaded.AssignDriver(driverID))
	s.Require().NoError(loaded.Start(time.Now()))
	s.Require().NoError(uow.RouteRepository().Update(ctx, loaded))

	orders, err := uow.OrderRepository().GetByRouteID(ctx, r.ID())
	s.Require().NoError(err)
	for _, o := range orders {
		s.Require().NoError(o.MarkAsInProgress())
		s.Require().NoError(uow.OrderRepository().Update(ctx, o))
	}
	s.Require().NoError(orders[0].MarkAsDelivered(driverID, orders[0].Location(), time.Now(), "", ""))

	s.Require().NoError(uow.Commit(ctx))
}

func (s *QueryHandlersIntegrationTestSuite) TestGetRoute() {
	ctx := context.Background()
	batchID := kernel.NewUUID()
	first, second := pgtest.NewOrder(s.T(), batchID), pgtest.NewOrder(s.T(), batchID)
	r := s.plannedRoute(nil, second, first)

	query, err := queries.NewGetRouteQuery(r.ID())
	s.Require().NoError(err)
	resp, err := queries.NewGetRouteQueryHandler(s.database.DB).Handle(ctx, query)

	s.Require().NoError(err)
	s.True(r.ID().IsEqual(resp.ID))
	s.Equal(route.Pending.String(), resp.Status)
	s.Nil(resp.DriverID)
	s.Require().Len(resp.Stops, 2)
	s.True(second.ID().IsEqual(resp.Stops[0].OrderID))
	s.Equal(1, resp.Stops[0].Sequence)
	s.Equal(order.Pending.String(), resp.Stops[0].OrderStatus)
	s.Equal(second.Address().City(), resp.Stops[0].City)
	s.True(first.ID().IsEqual(resp.Stops[1].OrderID))

	missing, err := queries.NewGetRouteQuery(kernel.NewUUID())
	s.Require().NoError(err)
	_, err = queries.NewGetRouteQueryHandler(s.database.DB).Handle(ctx, missing)
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (s *QueryHandlersIntegrationTestSuite) TestGetUndeliveredOrders() {
	ctx := context.Background()
	batchID, otherBatch := kernel.NewUUID(), kernel.NewUUID()
	delivered, transit := pgtest.NewOrder(s.T(), batchID), pgtest.NewOrder(s.T(), batchID)
	r := s.plannedRoute(nil, delivered, transit)
	s.startAndDeliverFirst(r)

	cancelled := pgtest.NewOrder(s.T(), batchID)
	s.Require().NoError(cancelled.MarkAsCancelled(time.Now()))
	pending := pgtest.NewOrder(s.T(), otherBatch)
	s.addOrders(cancelled, pending)

	handler := queries.NewGetUndeliveredOrdersQueryHandler(s.database.DB)
	all, err := handler.Handle(ctx, queries.NewGetUndeliveredOrdersQuery(nil))
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.True(transit.ID().IsEqual(all[0].ID))
	s.Equal(order.InTransit.String(), all[0].Status)
	s.Require().NotNil(all[0].RouteID)
	s.Equal(2, *all[0].DeliverySequence)
	s.True(pending.ID().IsEqual(all[1].ID))
	s.Nil(all[1].RouteID)

	onBatch, err := handler.Handle(ctx, queries.NewGetUndeliveredOrdersQuery(&otherBatch))
	s.Require().NoError(err)
	s.Require().Len(onBatch, 1)
	s.True(pending.ID().IsEqual(onBatch[0].ID))
}

func (s *QueryHandlersIntegrationTestSuite) TestGetUndeliveredOrders_EmptyDatabase() {
	result, err := queries.NewGetUndeliveredOrdersQueryHandler(s.database.DB).
		Handle(context.Background(), queries.NewGetUndeliveredOrdersQuery(nil))

	s.Require().NoError(err)
	s.NotNil(result)
	s.Empty(result)
}

func (s *QueryHandlersIntegrationTestSuite) TestGetActiveRouteByZone() {
	ctx := context.Background()
	zone := kernel.NewUUID()
	batchID := kernel.NewUUID()
	r := s.plannedRoute(&zone, pgtest.NewOrder(s.T(), batchID), pgtest.NewOrder(s.T(), batchID),
		pgtest.NewOrder(s.T(), batchID))

	query, err := queries.NewGetActiveRouteByZoneQuery(zone)
	s.Require().NoError(err)
	handler := queries.NewGetActiveRouteByZoneQueryHandler(s.database.DB)

	_, err = handler.Handle(ctx, query)
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)

	s.startAndDeliverFirst(r)

	resp, err := handler.Handle(ctx, query)
	s.Require().NoError(err)
	s.True(r.ID().IsEqual(resp.RouteID))
	s.Equal(3, resp.TotalStops)
	s.Equal(1, resp.FinishedStops)
	s.Equal(2, resp.RemainingStops)
}

func (s *QueryHandlersIntegrationTestSuite) TestGetAllDrivers() {
	ctx := context.Background()
	zone := kernel.NewUUID()
	bea, err := driver.NewDriver(kernel.NewUUID(), "Bea", nil, time.Now())
	s.Require().NoError(err)
	ana, err := driver.NewDriver(kernel.NewUUID(), "Ana", &zone, time.Now())
	s.Require().NoError(err)

	batchID := kernel.NewUUID()
	r := s.plannedRoute(&zone, pgtest.NewOrder(s.T(), batchID))

	uow := s.factory.Create()
	s.Require().NoError(uow.Begin(ctx))
	s.Require().NoError(uow.DriverRepository().Add(ctx, bea))
	s.Require().NoError(uow.DriverRepository().Add(ctx, ana))
	loaded, err := uow.RouteRepository().Get(ctx, r.ID())
	s.Require().NoError(err)
	s.Require().NoError(loaded.AssignDriver(ana.ID()))
	s.Require().NoError(loaded.Start(time.Now()))
	s.Require().NoError(uow.RouteRepository().Update(ctx, loaded))
	s.Require().NoError(uow.Commit(ctx))

	drivers, err := queries.NewGetAllDriversQueryHandler(s.database.DB).Handle(ctx, queries.NewGetAllDriversQuery())

	s.Require().NoError(err)
	s.Require().Len(drivers, 2)
	s.Equal("Ana", drivers[0].Name)
	s.True(ana.ID().IsEqual(drivers[0].ID))
	s.Require().NotNil(drivers[0].ZoneID)
	s.True(zone.IsEqual(*drivers[0].ZoneID))
	s.Require().NotNil(drivers[0].ActiveRouteID)
	s.True(r.ID().IsEqual(*drivers[0].ActiveRouteID))
	s.Equal("Bea", drivers[1].Name)
	s.Nil(drivers[1].ZoneID)
	s.Nil(drivers[1].ActiveRouteID)
}

func (s *QueryHandlersIntegrationTestSuite) TestGetAllDrivers_EmptyDatabase() {
	result, err := queries.NewGetAllDriversQueryHandler(s.database.DB).
		Handle(context.Background(), queries.NewGetAllDriversQuery())

	s.Require().NoError(err)
	s.NotNil(result)
	s.Empty(result)
}

func (s *QueryHandlersIntegrationTestSuite) TestGetAllDrivers_CancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := queries.NewGetAllDriversQueryHandler(s.database.DB).Handle(ctx, queries.NewGetAllDriversQuery())

	s.Require().Error(err)
	s.Nil(result)
}

func TestQueryHandlersIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(QueryHandlersIntegrationTestSuite))
}
