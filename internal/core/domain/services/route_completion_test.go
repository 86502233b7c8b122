package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	day = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
)

type MockRouteRepository struct{ mock.Mock }

func (m *MockRouteRepository) Add(ctx context.Context, r *route.Route) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockRouteRepository) Update(ctx context.Context, r *route.Route) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockRouteRepository) Remove(ctx context.Context, r *route.Route) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*route.Route)
	return r, args.Error(1)
}
func (m *MockRouteRepository) GetAll(_ context.Context) ([]*route.Route, error) {
	return nil, errors.New("not implemented in mock")
}
func (m *MockRouteRepository) GetInProgressByZone(_ context.Context, _ kernel.UUID) (*route.Route, error) {
	return nil, errors.New("not implemented in mock")
}
func (m *MockRouteRepository) GetAllInProgress(_ context.Context) ([]*route.Route, error) {
	return nil, errors.New("not implemented in mock")
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(_ context.Context, _ *order.Order) error    { return nil }
func (m *MockOrderRepository) Update(_ context.Context, _ *order.Order) error { return nil }
func (m *MockOrderRepository) Remove(_ context.Context, _ *order.Order) error { return nil }
func (m *MockOrderRepository) Get(_ context.Context, _ kernel.UUID) (*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}
func (m *MockOrderRepository) GetAll(_ context.Context) ([]*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}
func (m *MockOrderRepository) GetByRouteID(ctx context.Context, routeID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, routeID)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}
func (m *MockOrderRepository) GetByBatchID(_ context.Context, _ kernel.UUID) ([]*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}

type repos struct {
	routes *MockRouteRepository
	orders *MockOrderRepository
}

func (r repos) RouteRepository() ports.RouteRepository { return r.routes }
func (r repos) OrderRepository() ports.OrderRepository { return r.orders }

func newRepos() repos {
	return repos{routes: new(MockRouteRepository), orders: new(MockOrderRepository)}
}

func startedRoute(t *testing.T) *route.Route {
	t.Helper()
	r, err := route.NewRoute(kernel.NewUUID(), kernel.NewUUID(), nil, day, now)
	require.NoError(t, err)
	require.NoError(t, r.AssignDriver(kernel.NewUUID()))
	require.NoError(t, r.Start(now))
	r.ClearDomainEvents()
	return r
}

func orderWithStatus(t *testing.T, routeID kernel.UUID, seq int, status order.Status) *order.Order {
	t.Helper()
	address, err := order.NewAddress("Torstrasse 1", "Berlin", "10119", "DE")
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), address,
		kernel.MustGeoPoint(52.53, 13.40), day, now)
	require.NoError(t, err)
	require.NoError(t, o.AssignToRoute(routeID, seq))

	switch status {
	case order.Pending:
	case order.InTransit:
		require.NoError(t, o.MarkAsInProgress())
	case order.Delivered:
		require.NoError(t, o.MarkAsInProgress())
		require.NoError(t, o.MarkAsDelivered(kernel.NewUUID(), kernel.MustGeoPoint(52.53, 13.40), now, "", ""))
	case order.Cancelled:
		require.NoError(t, o.MarkAsCancelled(now))
	case order.Failed:
		require.NoError(t, o.MarkAsFailed("nobody home", now))
	}
	o.ClearDomainEvents()
	return o
}

func TestRouteCompletionService_TryCompleteRoute(t *testing.T) {
	svc := services.NewRouteCompletionService(func() time.Time { return now })

	t.Run("completes when every order is terminal", func(t *testing.T) {
		ctx := t.Context()
		r := startedRoute(t)
		orders := []*order.Order{
			orderWithStatus(t, r.ID(), 1, order.Delivered),
			orderWithStatus(t, r.ID(), 2, order.Cancelled),
			orderWithStatus(t, r.ID(), 3, order.Failed),
		}
		rp := newRepos()
		rp.routes.On("Get", ctx, r.ID()).Return(r, nil).Once()
		rp.orders.On("GetByRouteID", ctx, r.ID()).Return(orders, nil).Once()
		rp.routes.On("Update", ctx, r).Return(nil).Once()

		done, err := svc.TryCompleteRoute(ctx, rp, r.ID())

		require.NoError(t, err)
		assert.True(t, done)
		assert.Equal(t, route.Completed, r.Status())
		assert.Equal(t, now, *r.CompletedAt())
		require.Len(t, r.DomainEvents(), 1)
		rp.routes.AssertExpectations(t)
		rp.orders.AssertExpectations(t)
	})

	t.Run("second call is a no-op", func(t *testing.T) {
		ctx := t.Context()
		r := startedRoute(t)
		orders := []*order.Order{orderWithStatus(t, r.ID(), 1, order.Delivered)}
		rp := newRepos()
		rp.routes.On("Get", ctx, r.ID()).Return(r, nil).Twice()
		rp.orders.On("GetByRouteID", ctx, r.ID()).Return(orders, nil).Twice()
		rp.routes.On("Update", ctx, r).Return(nil).Once()

		first, err := svc.TryCompleteRoute(ctx, rp, r.ID())
		require.NoError(t, err)
		second, err := svc.TryCompleteRoute(ctx, rp, r.ID())
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
		assert.Len(t, r.DomainEvents(), 1)
		rp.routes.AssertExpectations(t)
	})

	t.Run("an unfinished order keeps the route open", func(t *testing.T) {
		for _, status := range []order.Status{order.Pending, order.InTransit} {
			ctx := t.Context()
			r := startedRoute(t)
			orders := []*order.Order{
				orderWithStatus(t, r.ID(), 1, order.Delivered),
				orderWithStatus(t, r.ID(), 2, status),
			}
			rp := newRepos()
			rp.routes.On("Get", ctx, r.ID()).Return(r, nil).Once()
			rp.orders.On("GetByRouteID", ctx, r.ID()).Return(orders, nil).Once()

			done, err := svc.TryCompleteRoute(ctx, rp, r.ID())

			require.NoError(t, err)
			assert.False(t, done, status.String())
			assert.Equal(t, route.InProgress, r.Status())
			rp.routes.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		}
	})

	t.Run("route without orders is not completed", func(t *testing.T) {
		ctx := t.Context()
		r := startedRoute(t)
		rp := newRepos()
		rp.routes.On("Get", ctx, r.ID()).Return(r, nil).Once()
		rp.orders.On("GetByRouteID", ctx, r.ID()).Return([]*order.Order{}, nil).Once()

		done, err := svc.TryCompleteRoute(ctx, rp, r.ID())

		require.NoError(t, err)
		assert.False(t, done)
	})

	t.Run("pending route is not completed", func(t *testing.T) {
		ctx := t.Context()
		r, err := route.NewRoute(kernel.NewUUID(), kernel.NewUUID(), nil, day, now)
		require.NoError(t, err)
		orders := []*order.Order{orderWithStatus(t, r.ID(), 1, order.Cancelled)}
		rp := newRepos()
		rp.routes.On("Get", ctx, r.ID()).Return(r, nil).Once()
		rp.orders.On("GetByRouteID", ctx, r.ID()).Return(orders, nil).Once()

		done, err := svc.TryCompleteRoute(ctx, rp, r.ID())

		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, route.Pending, r.Status())
	})

	t.Run("missing route returns false", func(t *testing.T) {
		ctx := t.Context()
		id := kernel.NewUUID()
		rp := newRepos()
		rp.routes.On("Get", ctx, id).Return(nil, errs.NewObjectNotFoundError("route", id.String())).Once()

		done, err := svc.TryCompleteRoute(ctx, rp, id)

		require.NoError(t, err)
		assert.False(t, done)
	})

	t.Run("storage errors are returned", func(t *testing.T) {
		ctx := t.Context()
		id := kernel.NewUUID()
		boom := errors.New("connection reset")
		rp := newRepos()
		rp.routes.On("Get", ctx, id).Return(nil, boom).Once()

		done, err := svc.TryCompleteRoute(ctx, rp, id)

		require.ErrorIs(t, err, boom)
		assert.False(t, done)
	})
}

func TestCanCompleteRoute(t *testing.T) {
	r := startedRoute(t)

	assert.False(t, services.CanCompleteRoute(nil, nil))
	assert.False(t, services.CanCompleteRoute(r, nil))
	assert.True(t, services.CanCompleteRoute(r, []*order.Order{orderWithStatus(t, r.ID(), 1, order.Failed)}))
}
