package calculator_test

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"lastmile/internal/adapters/out/calculator"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/routing"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var depot = kernel.MustGeoPoint(52.5200, 13.4050)

func waypoint(t *testing.T, lat, lon float64) routing.Waypoint {
	t.Helper()
	w, err := routing.NewWaypoint(kernel.NewUUID(), kernel.MustGeoPoint(lat, lon))
	require.NoError(t, err)
	return w
}

func ids(waypoints []routing.Waypoint) []kernel.UUID {
	out := make([]kernel.UUID, len(waypoints))
	for i, w := range waypoints {
		out[i] = w.ID()
	}
	return out
}

func requirePermutation(t *testing.T, ordered routing.OrderedRoute, input []routing.Waypoint) {
	t.Helper()
	require.Equal(t, len(input), ordered.Len())
	require.NoError(t, ordered.Matches(ids(input)))
	for i, stop := range ordered.Stops() {
		assert.Equal(t, i+1, stop.Sequence())
	}
}

func TestNearestNeighbor_OrdersByDistance(t *testing.T) {
	near := waypoint(t, 52.5210, 13.4050)
	middle := waypoint(t, 52.5300, 13.4050)
	far := waypoint(t, 52.5500, 13.4050)
	input := []routing.Waypoint{far, near, middle}

	ordered, err := calculator.NewNearestNeighborCalculator(nil).CalculateOrder(t.Context(), depot, input)

	require.NoError(t, err)
	requirePermutation(t, ordered, input)
	assert.Equal(t, []kernel.UUID{near.ID(), middle.ID(), far.ID()}, ordered.IDs())
}

func TestNearestNeighbor_IsDeterministic(t *testing.T) {
	input := make([]routing.Waypoint, 0, 12)
	for i := range 12 {
		input = append(input, waypoint(t, 52.50+float64(i%4)*0.01, 13.38+float64(i/4)*0.01))
	}
	c := calculator.NewNearestNeighborCalculator(nil)

	first, err := c.CalculateOrder(t.Context(), depot, input)
	require.NoError(t, err)
	requirePermutation(t, first, input)

	for range 5 {
		shuffled := slices.Clone(input)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		again, err := c.CalculateOrder(t.Context(), depot, shuffled)
		require.NoError(t, err)
		assert.Equal(t, first.IDs(), again.IDs())
	}
}

func TestNearestNeighbor_BreaksTiesByIdentifier(t *testing.T) {
	a, err := routing.NewWaypoint(kernel.MustUUID("aaaaaaaa-0000-4000-8000-000000000000"), kernel.MustGeoPoint(52.53, 13.405))
	require.NoError(t, err)
	b, err := routing.NewWaypoint(kernel.MustUUID("bbbbbbbb-0000-4000-8000-000000000000"), kernel.MustGeoPoint(52.53, 13.405))
	require.NoError(t, err)

	ordered, err := calculator.NewNearestNeighborCalculator(nil).CalculateOrder(t.Context(), depot, []routing.Waypoint{b, a})

	require.NoError(t, err)
	assert.Equal(t, []kernel.UUID{a.ID(), b.ID()}, ordered.IDs())
}

func TestNearestNeighbor_RejectsInvalidInput(t *testing.T) {
	c := calculator.NewNearestNeighborCalculator(nil)
	w := waypoint(t, 52.53, 13.40)

	_, err := c.CalculateOrder(t.Context(), depot, nil)
	var routingErr *errs.RoutingError
	require.ErrorAs(t, err, &routingErr)

	_, err = c.CalculateOrder(t.Context(), depot, []routing.Waypoint{w, w})
	require.ErrorIs(t, err, errs.ErrRouting)
}

func TestNearestNeighbor_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := calculator.NewNearestNeighborCalculator(nil).CalculateOrder(ctx, depot, []routing.Waypoint{waypoint(t, 52.53, 13.40)})

	require.ErrorIs(t, err, errs.ErrRouting)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNearestNeighbor_RecordsMetrics(t *testing.T) {
	m := metrics.New("test")
	c := calculator.NewNearestNeighborCalculator(m)

	_, err := c.CalculateOrder(t.Context(), depot, []routing.Waypoint{waypoint(t, 52.53, 13.40)})
	require.NoError(t, err)
	_, err = c.CalculateOrder(t.Context(), depot, nil)
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RoutingRequests.WithLabelValues(calculator.ProviderNearest, "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RoutingRequests.WithLabelValues(calculator.ProviderNearest, "error")))
}
