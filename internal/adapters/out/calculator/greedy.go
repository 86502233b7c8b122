// Package calculator implements ports.RouteCalculator: a local nearest-neighbour
// calculator over great-circle distances and an OpenRouteService calculator over
// road travel durations. Both share the same greedy selection so that a given
// origin and waypoint set always yields the same stop order.
package calculator

import (
	"context"
	"math"
	"slices"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/routing"
	"lastmile/internal/pkg/errs"
)

// costFunc returns the cost of travelling from node from to node to. Node 0 is
// the origin and node i (i >= 1) is waypoint i-1 of the sorted input.
type costFunc func(from, to int) (float64, error)

// sortWaypoints orders waypoints by identifier string so results do not depend
// on the order callers pass them in.
func sortWaypoints(waypoints []routing.Waypoint) []routing.Waypoint {
	sorted := slices.Clone(waypoints)
	slices.SortFunc(sorted, func(a, b routing.Waypoint) int {
		return a.ID().Compare(b.ID())
	})
	return sorted
}

// nearestNeighbour visits, from the origin, the cheapest unvisited waypoint
// until all are visited. Equal costs go to the waypoint with the smaller
// identifier because the input is sorted and only a strictly cheaper candidate
// replaces the current best.
func nearestNeighbour(ctx context.Context, sorted []routing.Waypoint, cost costFunc) (routing.OrderedRoute, error) {
	visited := make([]bool, len(sorted))
	ids := make([]kernel.UUID, 0, len(sorted))
	current := 0

	for range sorted {
		if err := ctx.Err(); err != nil {
			return routing.OrderedRoute{}, errs.NewRoutingErrorWithCause("calculation interrupted", err)
		}

		best, bestCost := -1, math.Inf(1)
		for i := range sorted {
			if visited[i] {
				continue
			}
			c, err := cost(current, i+1)
			if err != nil {
				return routing.OrderedRoute{}, err
			}
			if best == -1 || c < bestCost {
				best, bestCost = i, c
			}
		}

		visited[best] = true
		ids = append(ids, sorted[best].ID())
		current = best + 1
	}

	return routing.OrderedRouteFromIDs(ids)
}

func nodeLocation(origin kernel.GeoPoint, sorted []routing.Waypoint, node int) kernel.GeoPoint {
	if node == 0 {
		return origin
	}
	return sorted[node-1].Location()
}
