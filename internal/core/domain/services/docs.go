// Package services provides domain services for rules that span more than one
// aggregate of the delivery domain.
//
// The package includes:
//   - RouteCompletionService: completes a route once every attached order is finished
//   - RoutePlanner: applies a computed stop sequence to a route and its orders
//
// Neither service persists anything itself. Aggregates they change are tracked
// through the repositories of the caller's unit of work.
package services
