package order

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/ddd"
)

// Event names raised by the Order aggregate.
const (
	DeliveredEventName        = "delivery.order.delivered"
	CancelledEventName        = "delivery.order.cancelled"
	FailedEventName           = "delivery.order.failed"
	IncidentReportedEventName = "delivery.order.incident_reported"
)

// OrderDelivered is raised when an order reaches Delivered.
type OrderDelivered struct {
	ddd.BaseEvent
	OrderID     kernel.UUID
	RouteID     *kernel.UUID
	DeliveredAt time.Time
}

// OrderCancelled is raised when an order reaches Cancelled.
type OrderCancelled struct {
	ddd.BaseEvent
	OrderID     kernel.UUID
	RouteID     *kernel.UUID
	CancelledAt time.Time
}

// OrderFailed is raised when an order reaches Failed.
type OrderFailed struct {
	ddd.BaseEvent
	OrderID  kernel.UUID
	RouteID  *kernel.UUID
	Reason   string
	FailedAt time.Time
}

// OrderIncidentReported is raised for every incident recorded on an order.
type OrderIncidentReported struct {
	ddd.BaseEvent
	OrderID      kernel.UUID
	RouteID      *kernel.UUID
	DriverID     kernel.UUID
	IncidentType IncidentType
	Description  string
	ReportedAt   time.Time
}

// TerminalEvent is implemented by the events raised when an order reaches a
// terminal status. Reactions that only care about "the order is done" use it.
type TerminalEvent interface {
	ddd.DomainEvent
	TerminatedOrderID() kernel.UUID
	TerminatedRouteID() *kernel.UUID
}

func (e OrderDelivered) TerminatedOrderID() kernel.UUID  { return e.OrderID }
func (e OrderDelivered) TerminatedRouteID() *kernel.UUID { return e.RouteID }
func (e OrderCancelled) TerminatedOrderID() kernel.UUID  { return e.OrderID }
func (e OrderCancelled) TerminatedRouteID() *kernel.UUID { return e.RouteID }
func (e OrderFailed) TerminatedOrderID() kernel.UUID     { return e.OrderID }
func (e OrderFailed) TerminatedRouteID() *kernel.UUID    { return e.RouteID }

func copyRouteID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
