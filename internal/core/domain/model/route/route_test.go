package route_test

import (
	"fmt"
	"testing"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/routing"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	day = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	now = time.Date(2026, 6, 1, 7, 45, 0, 0, time.UTC)
)

func newPendingRoute(t *testing.T) *route.Route {
	t.Helper()
	r, err := route.NewRoute(kernel.NewUUID(), kernel.NewUUID(), nil, day, now)
	require.NoError(t, err)
	return r
}

func newStartedRoute(t *testing.T) *route.Route {
	t.Helper()
	r := newPendingRoute(t)
	require.NoError(t, r.AssignDriver(kernel.NewUUID()))
	require.NoError(t, r.Start(now))
	r.ClearDomainEvents()
	return r
}

func requireTransition(t *testing.T, err error, from route.Status, to fmt.Stringer) {
	t.Helper()
	var transition *errs.InvalidStateTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "route", transition.Entity)
	assert.Equal(t, from.String(), transition.From)
	assert.Equal(t, to.String(), transition.To)
}

type operation string

func (o operation) String() string { return string(o) }

func TestNewRoute(t *testing.T) {
	zone := kernel.NewUUID()

	r, err := route.NewRoute(kernel.NewUUID(), kernel.NewUUID(), &zone, day, now)

	require.NoError(t, err)
	require.NoError(t, r.Validate())
	assert.Equal(t, route.Pending, r.Status())
	assert.Nil(t, r.DriverID())
	require.NotNil(t, r.ZoneID())
	assert.True(t, zone.IsEqual(*r.ZoneID()))
	assert.Empty(t, r.Stops())

	_, err = route.NewRoute(kernel.NewUUID(), kernel.UUID{}, nil, time.Time{}, now)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestRoute_AssignDriver(t *testing.T) {
	t.Run("empty driver is a validation error", func(t *testing.T) {
		r := newPendingRoute(t)

		err := r.AssignDriver(kernel.UUID{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "driver required")
	})

	t.Run("pending route accepts a new driver", func(t *testing.T) {
		r := newPendingRoute(t)
		first, second := kernel.NewUUID(), kernel.NewUUID()

		require.NoError(t, r.AssignDriver(first))
		require.NoError(t, r.AssignDriver(second))

		assert.True(t, second.IsEqual(*r.DriverID()))
	})

	t.Run("driver is frozen after start", func(t *testing.T) {
		r := newStartedRoute(t)

		err := r.AssignDriver(kernel.NewUUID())

		requireTransition(t, err, route.InProgress, operation(route.OperationAssignDriver))
		assert.Contains(t, err.Error(), "cannot change driver")
	})
}

func TestRoute_Start(t *testing.T) {
	t.Run("starts and raises RouteStarted", func(t *testing.T) {
		r := newPendingRoute(t)
		driver := kernel.NewUUID()
		require.NoError(t, r.AssignDriver(driver))

		require.NoError(t, r.Start(now))

		assert.Equal(t, route.InProgress, r.Status())
		require.NotNil(t, r.StartedAt())
		assert.Equal(t, now, *r.StartedAt())

		events := r.DomainEvents()
		require.Len(t, events, 1)
		started, ok := events[0].(route.RouteStarted)
		require.True(t, ok)
		assert.Equal(t, route.StartedEventName, started.EventName())
		assert.True(t, r.ID().IsEqual(started.RouteID))
		assert.True(t, r.BatchID().IsEqual(started.BatchID))
		assert.True(t, driver.IsEqual(started.DriverID))
	})

	t.Run("without driver is rejected and nothing changes", func(t *testing.T) {
		r := newPendingRoute(t)

		err := r.Start(now)

		requireTransition(t, err, route.Pending, route.InProgress)
		assert.Equal(t, route.Pending, r.Status())
		assert.Nil(t, r.StartedAt())
		assert.Empty(t, r.DomainEvents())
	})

	t.Run("cannot start twice", func(t *testing.T) {
		r := newStartedRoute(t)

		requireTransition(t, r.Start(now), route.InProgress, route.InProgress)
		assert.Empty(t, r.DomainEvents())
	})

	t.Run("does not require planned stops", func(t *testing.T) {
		r := newPendingRoute(t)
		require.NoError(t, r.AssignDriver(kernel.NewUUID()))
		require.NoError(t, r.Start(now))
	})
}

func TestRoute_Complete(t *testing.T) {
	t.Run("in progress completes once", func(t *testing.T) {
		r := newStartedRoute(t)
		at := now.Add(4 * time.Hour)

		done, err := r.Complete(at)
		require.NoError(t, err)
		assert.True(t, done)
		assert.Equal(t, route.Completed, r.Status())
		assert.Equal(t, at, *r.CompletedAt())

		again, err := r.Complete(at.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, again)
		assert.Equal(t, at, *r.CompletedAt())

		events := r.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, route.CompletedEventName, events[0].EventName())
	})

	t.Run("pending cannot complete", func(t *testing.T) {
		r := newPendingRoute(t)

		done, err := r.Complete(now)

		assert.False(t, done)
		requireTransition(t, err, route.Pending, route.Completed)
	})

	t.Run("cancelled cannot complete", func(t *testing.T) {
		r := newPendingRoute(t)
		require.NoError(t, r.Cancel(now))

		_, err := r.Complete(now)

		requireTransition(t, err, route.Cancelled, route.Completed)
	})
}

func TestRoute_Cancel(t *testing.T) {
	for name, prepare := range map[string]func(*testing.T) *route.Route{
		"pending":     newPendingRoute,
		"in progress": newStartedRoute,
	} {
		t.Run(name, func(t *testing.T) {
			r := prepare(t)

			require.NoError(t, r.Cancel(now))

			assert.Equal(t, route.Cancelled, r.Status())
			require.NotNil(t, r.CancelledAt())
			events := r.DomainEvents()
			require.Len(t, events, 1)
			cancelled, ok := events[0].(route.RouteCancelled)
			require.True(t, ok)
			assert.True(t, r.BatchID().IsEqual(cancelled.BatchID))
		})
	}

	t.Run("completed cannot cancel", func(t *testing.T) {
		r := newStartedRoute(t)
		_, err := r.Complete(now)
		require.NoError(t, err)

		requireTransition(t, r.Cancel(now), route.Completed, route.Cancelled)
	})
}

func TestRoute_SetOrderedWaypoints(t *testing.T) {
	a, b := kernel.NewUUID(), kernel.NewUUID()
	ordered, err := routing.OrderedRouteFromIDs([]kernel.UUID{b, a})
	require.NoError(t, err)

	t.Run("replaces stops and raises RoutePlanned", func(t *testing.T) {
		r := newPendingRoute(t)

		require.NoError(t, r.SetOrderedWaypoints(ordered, []kernel.UUID{a, b}, now))

		stops := r.Stops()
		require.Len(t, stops, 2)
		assert.True(t, b.IsEqual(stops[0].WaypointID()))
		assert.Equal(t, 2, stops[1].Sequence())

		events := r.DomainEvents()
		require.Len(t, events, 1)
		planned, ok := events[0].(route.RoutePlanned)
		require.True(t, ok)
		assert.Equal(t, 2, planned.StopCount)
	})

	t.Run("must match the attached orders", func(t *testing.T) {
		r := newPendingRoute(t)

		err := r.SetOrderedWaypoints(ordered, []kernel.UUID{a}, now)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Empty(t, r.Stops())
		assert.Empty(t, r.DomainEvents())
	})

	t.Run("only while pending", func(t *testing.T) {
		r := newStartedRoute(t)

		err := r.SetOrderedWaypoints(ordered, []kernel.UUID{a, b}, now)

		requireTransition(t, err, route.InProgress, operation(route.OperationPlan))
	})
}

func TestRestoreRoute(t *testing.T) {
	driver := kernel.NewUUID()
	started := now
	stopA, err := routing.NewOrderedWaypoint(kernel.NewUUID(), 1)
	require.NoError(t, err)

	r, err := route.RestoreRoute(route.Snapshot{
		ID:            kernel.NewUUID(),
		BatchID:       kernel.NewUUID(),
		DriverID:      &driver,
		Status:        route.InProgress,
		ScheduledDate: day,
		CreatedAt:     now,
		StartedAt:     &started,
		Stops:         []routing.OrderedWaypoint{stopA},
		Version:       5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, r.Version())
	assert.Len(t, r.Stops(), 1)
	assert.Empty(t, r.DomainEvents())

	_, err = route.RestoreRoute(route.Snapshot{
		ID:      kernel.NewUUID(),
		BatchID: kernel.NewUUID(),
		Status:  route.InProgress,
	})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
