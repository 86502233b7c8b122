// Package routing contains the value objects exchanged with a route calculator:
// the unordered Waypoint input and the OrderedRoute result.
//
// An OrderedRoute always covers a set of distinct waypoints with the contiguous
// sequence numbers 1..N.
package routing
