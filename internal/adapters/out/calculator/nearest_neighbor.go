package calculator

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/routing"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/metrics"
)

// ProviderNearest labels metrics of the NearestNeighborCalculator.
const ProviderNearest = "nearest"

// NearestNeighborCalculator orders waypoints greedily by great-circle distance,
// starting at the origin. It needs no network access.
type NearestNeighborCalculator struct {
	metrics *metrics.Metrics
}

var _ ports.RouteCalculator = NearestNeighborCalculator{}

// NewNearestNeighborCalculator creates the calculator. m may be nil.
func NewNearestNeighborCalculator(m *metrics.Metrics) NearestNeighborCalculator {
	return NearestNeighborCalculator{metrics: m}
}

func (c NearestNeighborCalculator) CalculateOrder(
	ctx context.Context,
	origin kernel.GeoPoint,
	waypoints []routing.Waypoint,
) (ordered routing.OrderedRoute, err error) {
	start := time.Now()
	defer func() { c.metrics.RecordRouting(ProviderNearest, err == nil, time.Since(start)) }()

	if err = routing.ValidateWaypoints(waypoints); err != nil {
		return routing.OrderedRoute{}, err
	}
	if err = origin.Validate(); err != nil {
		return routing.OrderedRoute{}, err
	}

	sorted := sortWaypoints(waypoints)
	return nearestNeighbour(ctx, sorted, func(from, to int) (float64, error) {
		return nodeLocation(origin, sorted, from).Distance(nodeLocation(origin, sorted, to))
	})
}
