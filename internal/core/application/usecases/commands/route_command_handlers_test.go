package commands_test

import (
	"testing"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRouteCommandHandler_Handle(t *testing.T) {
	e := newEnv(t)
	batchID := e.createBatch(t)

	id := e.createRoute(t, batchID)

	r := e.route(t, id)
	assert.Equal(t, route.Pending, r.Status())
	assert.True(t, batchID.IsEqual(r.BatchID()))
	assert.Equal(t, day, r.ScheduledDate())
}

func TestCreateRouteCommandHandler_UnknownBatch(t *testing.T) {
	e := newEnv(t)
	cmd, err := commands.NewCreateRouteCommand(kernel.NewUUID(), kernel.NewUUID(), nil, day)
	require.NoError(t, err)

	err = commands.NewCreateRouteCommandHandler(e.uows).Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestAssignDriverCommandHandler_Handle(t *testing.T) {
	e := newEnv(t)
	routeID := e.createRoute(t, e.createBatch(t))
	h := commands.NewAssignDriverCommandHandler(e.uows)

	t.Run("unknown driver", func(t *testing.T) {
		cmd, err := commands.NewAssignDriverCommand(routeID, kernel.NewUUID())
		require.NoError(t, err)

		require.ErrorIs(t, h.Handle(t.Context(), cmd), errs.ErrObjectNotFound)
		assert.Nil(t, e.route(t, routeID).DriverID())
	})

	t.Run("known driver", func(t *testing.T) {
		driverID := e.createDriver(t)

		e.assignDriver(t, routeID, driverID)

		require.NotNil(t, e.route(t, routeID).DriverID())
		assert.True(t, driverID.IsEqual(*e.route(t, routeID).DriverID()))
	})

	t.Run("started route keeps its driver", func(t *testing.T) {
		require.NoError(t, e.startRoute(t, routeID))
		cmd, err := commands.NewAssignDriverCommand(routeID, e.createDriver(t))
		require.NoError(t, err)

		require.ErrorIs(t, h.Handle(t.Context(), cmd), errs.ErrConflict)
	})
}

func TestStartRouteCommandHandler_Handle(t *testing.T) {
	t.Run("without driver is a conflict", func(t *testing.T) {
		e := newEnv(t)
		routeID := e.createRoute(t, e.createBatch(t))

		err := e.startRoute(t, routeID)

		var transition *errs.InvalidStateTransitionError
		require.ErrorAs(t, err, &transition)
		assert.Equal(t, route.Pending, e.route(t, routeID).Status())
	})

	t.Run("puts every pending order in transit", func(t *testing.T) {
		e := newEnv(t)
		routeID, _, orderIDs := e.plannedRoute(t, 3)

		require.NoError(t, e.startRoute(t, routeID))

		assert.Equal(t, route.InProgress, e.route(t, routeID).Status())
		for _, id := range orderIDs {
			assert.Equal(t, order.InTransit, e.order(t, id).Status())
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		e := newEnv(t)
		require.ErrorIs(t, e.startRoute(t, kernel.NewUUID()), errs.ErrObjectNotFound)
	})
}

func TestCancelRouteCommandHandler_Handle(t *testing.T) {
	cancel := func(t *testing.T, e env, routeID kernel.UUID) error {
		t.Helper()
		cmd, err := commands.NewCancelRouteCommand(routeID)
		require.NoError(t, err)
		return commands.NewCancelRouteCommandHandler(e.uows).Handle(t.Context(), cmd)
	}

	t.Run("pending route releases its orders", func(t *testing.T) {
		e := newEnv(t)
		routeID, _, orderIDs := e.plannedRoute(t, 2)

		require.NoError(t, cancel(t, e, routeID))

		assert.Equal(t, route.Cancelled, e.route(t, routeID).Status())
		for _, id := range orderIDs {
			o := e.order(t, id)
			assert.Equal(t, order.Pending, o.Status())
			assert.Nil(t, o.RouteID())
			assert.Nil(t, o.DeliverySequence())
		}
	})

	t.Run("in progress route keeps orders in transit", func(t *testing.T) {
		e := newEnv(t)
		routeID, _, orderIDs := e.plannedRoute(t, 2)
		require.NoError(t, e.startRoute(t, routeID))

		require.NoError(t, cancel(t, e, routeID))

		for _, id := range orderIDs {
			o := e.order(t, id)
			assert.Equal(t, order.InTransit, o.Status())
			assert.NotNil(t, o.RouteID())
		}
	})

	t.Run("completed route cannot be cancelled", func(t *testing.T) {
		e := newEnv(t)
		routeID, driverID, orderIDs := e.plannedRoute(t, 1)
		require.NoError(t, e.startRoute(t, routeID))
		require.NoError(t, e.deliver(t, orderIDs[0], driverID))

		require.ErrorIs(t, cancel(t, e, routeID), errs.ErrConflict)
	})
}

func TestCompleteRouteCommandHandler_Handle(t *testing.T) {
	t.Run("pending route is not completed", func(t *testing.T) {
		e := newEnv(t)
		routeID, _, _ := e.plannedRoute(t, 1)

		done, err := e.completeRoute(t, routeID)

		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, route.Pending, e.route(t, routeID).Status())
	})

	t.Run("started route without orders stays in progress", func(t *testing.T) {
		e := newEnv(t)
		routeID := e.createRoute(t, e.createBatch(t))
		e.assignDriver(t, routeID, e.createDriver(t))
		require.NoError(t, e.startRoute(t, routeID))

		done, err := e.completeRoute(t, routeID)

		require.NoError(t, err)
		assert.False(t, done)
		assert.Equal(t, route.InProgress, e.route(t, routeID).Status())
	})

	t.Run("unknown route", func(t *testing.T) {
		e := newEnv(t)

		done, err := e.completeRoute(t, kernel.NewUUID())

		require.NoError(t, err)
		assert.False(t, done)
	})
}
