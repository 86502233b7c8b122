package route

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/ddd"
)

// Event names raised by the Route aggregate.
const (
	PlannedEventName   = "delivery.route.planned"
	StartedEventName   = "delivery.route.started"
	CompletedEventName = "delivery.route.completed"
	CancelledEventName = "delivery.route.cancelled"
)

// RoutePlanned is raised when a new stop sequence is applied.
type RoutePlanned struct {
	ddd.BaseEvent
	RouteID   kernel.UUID
	StopCount int
	PlannedAt time.Time
}

// RouteStarted is raised when the driver sets off. Its reaction moves the
// route's pending orders in transit.
type RouteStarted struct {
	ddd.BaseEvent
	RouteID   kernel.UUID
	BatchID   kernel.UUID
	DriverID  kernel.UUID
	StartedAt time.Time
}

// RouteCompleted is raised once, when the route reaches Completed.
type RouteCompleted struct {
	ddd.BaseEvent
	RouteID     kernel.UUID
	BatchID     kernel.UUID
	CompletedAt time.Time
}

// RouteCancelled is raised when the route is cancelled.
type RouteCancelled struct {
	ddd.BaseEvent
	RouteID     kernel.UUID
	BatchID     kernel.UUID
	CancelledAt time.Time
}
