// Package order contains the Order aggregate: a single customer delivery with
// its line items, its position on a route, the proof of delivery and any
// incident reported by the driver.
//
// The Order aggregate root enforces the following invariants:
//   - RouteID and DeliverySequence are either both set or both empty
//   - line item quantities are always positive
//   - Delivered, Cancelled and Failed are terminal
//   - every illegal transition returns errs.InvalidStateTransitionError
//
// State changes that other aggregates react to raise domain events
// (OrderDelivered, OrderCancelled, OrderFailed, OrderIncidentReported) which
// are dispatched when the unit of work commits.
package order
