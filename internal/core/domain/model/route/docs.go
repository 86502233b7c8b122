// Package route contains the Route aggregate: one driver's ordered sequence of
// delivery stops for a scheduled day.
//
// Lifecycle:
//
//	Pending ──Start──> InProgress ──Complete──> Completed
//	   │                   │
//	   └──────Cancel───────┴──────> Cancelled
//
// A route can only start once a driver is assigned. Completion is evaluated by
// the route completion service when every attached order is finished, and
// completing twice is a no-op.
package route
