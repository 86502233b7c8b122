package order

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/ddd"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order represents a single customer delivery. It is the aggregate root that manages
// the order lifecycle from creation, through transit on a route, to a terminal outcome.
//
// Order follows these invariants:
//   - Must have valid order, batch and customer identifiers
//   - Must have a delivery address and a valid delivery location
//   - RouteID and DeliverySequence are set and cleared together
//   - Line item quantities are positive and product lines are unique
//   - Status transitions follow the state machine in Status
//
// Mutating methods that other aggregates react to queue a domain event on the
// embedded ddd.BaseAggregate.
type Order struct {
	ddd.BaseAggregate

	id         kernel.UUID
	batchID    kernel.UUID
	customerID kernel.UUID

	// routeID and deliverySequence locate the order on a route; both nil when unplanned.
	routeID          *kernel.UUID
	deliverySequence *int

	status                Status
	scheduledDeliveryDate time.Time
	address               Address
	location              kernel.GeoPoint
	items                 []Item

	delivery      *DeliveryProof
	incident      *Incident
	failureReason string

	createdAt time.Time

	guard guard.ConstructorGuard
}

// NewOrder creates a Pending order that is not yet attached to any route.
//
// Parameters:
//   - id: Unique identifier for the order
//   - batchID: The batch the order was reserved on
//   - customerID: The customer receiving the order
//   - address: Postal delivery address
//   - location: Geographic delivery position used for route planning
//   - scheduledDeliveryDate: Day the delivery is planned for
//   - createdAt: Creation time
//
// Example:
//
//	address, _ := order.NewAddress("Alexanderplatz 1", "Berlin", "10178", "DE")
//	location, _ := kernel.NewGeoPoint(52.5219, 13.4132)
//	o, err := order.NewOrder(kernel.NewUUID(), batchID, customerID, address, location, day, now)
func NewOrder(
	id kernel.UUID,
	batchID kernel.UUID,
	customerID kernel.UUID,
	address Address,
	location kernel.GeoPoint,
	scheduledDeliveryDate time.Time,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status:    Pending,
		createdAt: createdAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setBatchID(batchID),
		o.setCustomerID(customerID),
		o.setAddress(address),
		o.setLocation(location),
		o.setScheduledDeliveryDate(scheduledDeliveryDate),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Snapshot carries the persisted state of an order. It is used by repositories to
// rebuild the aggregate through RestoreOrder.
type Snapshot struct {
	ID                    kernel.UUID
	BatchID               kernel.UUID
	CustomerID            kernel.UUID
	RouteID               *kernel.UUID
	DeliverySequence      *int
	Status                Status
	ScheduledDeliveryDate time.Time
	Address               Address
	Location              kernel.GeoPoint
	Items                 []Item
	Delivery              *DeliveryProof
	Incident              *Incident
	FailureReason         string
	CreatedAt             time.Time
	Version               int
}

// RestoreOrder rebuilds an order from storage without raising domain events.
// It re-checks the invariants so inconsistent rows are reported instead of loaded.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		BaseAggregate: ddd.RestoreBaseAggregate(s.Version),
		status:        s.Status,
		delivery:      s.Delivery,
		incident:      s.Incident,
		failureReason: s.FailureReason,
		createdAt:     s.CreatedAt,
		guard:         guard.NewConstructorGuard(),
	}

	var errRoute error
	if (s.RouteID == nil) != (s.DeliverySequence == nil) {
		errRoute = errs.NewValueIsInvalidErrorWithCause("routeID",
			errors.New("route and delivery sequence must be set together"))
	} else if s.RouteID != nil {
		errRoute = o.setRoute(*s.RouteID, *s.DeliverySequence)
	}

	var errDelivery error
	if (s.Status == Delivered) != (s.Delivery != nil) {
		errDelivery = errs.NewValueIsInvalidErrorWithCause("delivery",
			fmt.Errorf("proof of delivery must be present exactly when delivered (status %s)", s.Status))
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setBatchID(s.BatchID),
		o.setCustomerID(s.CustomerID),
		o.setAddress(s.Address),
		o.setLocation(s.Location),
		o.setScheduledDeliveryDate(s.ScheduledDeliveryDate),
		s.Status.Validate(),
		errRoute,
		errDelivery,
	); err != nil {
		return nil, err
	}

	for _, item := range s.Items {
		if err := o.mergeItem(item); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed through NewOrder
// or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// BatchID returns the batch the order belongs to.
func (o *Order) BatchID() kernel.UUID {
	return o.batchID
}

// CustomerID returns the receiving customer.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// RouteID returns the route the order is attached to, or nil.
func (o *Order) RouteID() *kernel.UUID {
	return copyRouteID(o.routeID)
}

// DeliverySequence returns the 1-based stop position on the route, or nil.
func (o *Order) DeliverySequence() *int {
	if o.deliverySequence == nil {
		return nil
	}
	seq := *o.deliverySequence
	return &seq
}

// IsOnRoute reports whether the order is attached to routeID.
func (o *Order) IsOnRoute(routeID kernel.UUID) bool {
	return o.routeID != nil && o.routeID.IsEqual(routeID)
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// ScheduledDeliveryDate returns the planned delivery day.
func (o *Order) ScheduledDeliveryDate() time.Time {
	return o.scheduledDeliveryDate
}

// Address returns the postal delivery address.
func (o *Order) Address() Address {
	return o.address
}

// Location returns the delivery position.
func (o *Order) Location() kernel.GeoPoint {
	return o.location
}

// Items returns a copy of the line items in insertion order.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// Delivery returns the proof of delivery, or nil while undelivered.
func (o *Order) Delivery() *DeliveryProof {
	return o.delivery
}

// Incident returns the last reported incident, or nil.
func (o *Order) Incident() *Incident {
	return o.incident
}

// FailureReason returns why the order failed; empty unless Failed.
func (o *Order) FailureReason() string {
	return o.failureReason
}

// CreatedAt returns the creation time.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// AddItem adds quantity units of productID. A second line for the same product is
// merged into the existing one.
//
// Returns:
//   - a validation error when quantity is not positive
//   - errs.InvalidStateTransitionError once the order is terminal
func (o *Order) AddItem(productID kernel.UUID, quantity int) error {
	item, err := NewItem(productID, quantity)
	if err != nil {
		return err
	}

	if o.status.IsTerminal() {
		return o.frozenError(OperationAddItem, "items cannot be added to a finished order")
	}

	return o.mergeItem(item)
}

// MarkAsInProgress moves a Pending order to InTransit. It is called when the
// route carrying the order starts.
func (o *Order) MarkAsInProgress() error {
	next, err := o.status.StartTransit()
	if err != nil {
		return err
	}

	o.status = next
	return nil
}

// MarkAsDelivered records the proof of delivery and moves an InTransit order to
// Delivered. Raises OrderDelivered.
//
// Example:
//
//	err := o.MarkAsDelivered(driverID, point, time.Now(), "left with neighbour", "")
//	if errors.Is(err, errs.ErrConflict) {
//	    // the order was not in transit
//	}
func (o *Order) MarkAsDelivered(
	driverID kernel.UUID,
	location kernel.GeoPoint,
	deliveredAt time.Time,
	comments string,
	photoRef string,
) error {
	next, err := o.status.Deliver()
	if err != nil {
		return err
	}

	proof, err := NewDeliveryProof(driverID, location, deliveredAt, comments, photoRef)
	if err != nil {
		return err
	}

	o.status = next
	o.delivery = &proof
	o.RaiseDomainEvent(OrderDelivered{
		BaseEvent:   ddd.NewBaseEvent(DeliveredEventName, o.id.String(), proof.DeliveredAt()),
		OrderID:     o.id,
		RouteID:     o.RouteID(),
		DeliveredAt: proof.DeliveredAt(),
	})
	return nil
}

// MarkAsFailed moves a Pending or InTransit order to Failed. Raises OrderFailed.
func (o *Order) MarkAsFailed(reason string, failedAt time.Time) error {
	next, err := o.status.Fail()
	if err != nil {
		return err
	}

	at := failedAt.UTC()
	o.status = next
	o.failureReason = strings.TrimSpace(reason)
	o.RaiseDomainEvent(OrderFailed{
		BaseEvent: ddd.NewBaseEvent(FailedEventName, o.id.String(), at),
		OrderID:   o.id,
		RouteID:   o.RouteID(),
		Reason:    o.failureReason,
		FailedAt:  at,
	})
	return nil
}

// MarkAsCancelled moves a Pending or InTransit order to Cancelled. Raises OrderCancelled.
func (o *Order) MarkAsCancelled(cancelledAt time.Time) error {
	next, err := o.status.Cancel()
	if err != nil {
		return err
	}

	at := cancelledAt.UTC()
	o.status = next
	o.RaiseDomainEvent(OrderCancelled{
		BaseEvent:   ddd.NewBaseEvent(CancelledEventName, o.id.String(), at),
		OrderID:     o.id,
		RouteID:     o.RouteID(),
		CancelledAt: at,
	})
	return nil
}

// ReportIncident records a driver-reported problem without changing the status.
// A later report replaces the previous one. Raises OrderIncidentReported.
// Incidents cannot be reported on terminal orders.
func (o *Order) ReportIncident(
	driverID kernel.UUID,
	incidentType IncidentType,
	description string,
	reportedAt time.Time,
) error {
	if o.status.IsTerminal() {
		return o.frozenError(OperationReportIncident, "incidents cannot be reported on a finished order")
	}

	incident, err := NewIncident(driverID, incidentType, description, reportedAt)
	if err != nil {
		return err
	}

	o.incident = &incident
	o.RaiseDomainEvent(OrderIncidentReported{
		BaseEvent:    ddd.NewBaseEvent(IncidentReportedEventName, o.id.String(), incident.ReportedAt()),
		OrderID:      o.id,
		RouteID:      o.RouteID(),
		DriverID:     driverID,
		IncidentType: incidentType,
		Description:  incident.Description(),
		ReportedAt:   incident.ReportedAt(),
	})
	return nil
}

// AssignToRoute attaches a Pending order to routeID at the given 1-based stop
// position. Re-assigning a Pending order moves it.
func (o *Order) AssignToRoute(routeID kernel.UUID, sequence int) error {
	if o.status != Pending {
		return o.frozenError(OperationPlan, "only pending orders can be planned on a route")
	}
	return o.setRoute(routeID, sequence)
}

// DetachFromRoute clears both the route and the delivery sequence of a Pending
// order. Detaching an unplanned order does nothing.
func (o *Order) DetachFromRoute() error {
	if o.routeID == nil {
		return nil
	}
	if o.status != Pending {
		return o.frozenError(OperationDetach, "only pending orders can be removed from a route")
	}

	o.routeID = nil
	o.deliverySequence = nil
	return nil
}

// ReleaseFromRoute clears the route of an order that was cancelled or failed
// before its route started, so the route can be planned again without it. Only
// callers that know the route has not started may release an order; a route that
// ran keeps its finished orders.
func (o *Order) ReleaseFromRoute() error {
	if o.routeID == nil {
		return nil
	}
	if o.status != Cancelled && o.status != Failed {
		return o.frozenError(OperationRelease, "only cancelled or failed orders can be released from a route")
	}

	o.routeID = nil
	o.deliverySequence = nil
	return nil
}

func (o *Order) frozenError(operation, reason string) error {
	return errs.NewOperationRejectedError(entityName, o.status, operation, reason)
}

func (o *Order) mergeItem(item Item) error {
	for i, existing := range o.items {
		if existing.productID.IsEqual(item.productID) {
			if existing.quantity > math.MaxInt-item.quantity {
				return errs.NewValueIsOutOfRangeError("quantity", item.quantity, 1, math.MaxInt-existing.quantity)
			}
			o.items[i].quantity += item.quantity
			return nil
		}
	}
	o.items = append(o.items, item)
	return nil
}

func (o *Order) setRoute(routeID kernel.UUID, sequence int) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	if sequence <= 0 {
		return errs.NewValueIsOutOfRangeError("deliverySequence", sequence, 1, math.MaxInt)
	}

	id := routeID
	seq := sequence
	o.routeID = &id
	o.deliverySequence = &seq
	return nil
}

// setID validates and sets the order's unique identifier.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setBatchID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("batchID", err)
	}
	o.batchID = id
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerID", err)
	}
	o.customerID = id
	return nil
}

func (o *Order) setAddress(address Address) error {
	if address.IsZero() {
		return errs.NewValueIsRequiredError("deliveryAddress")
	}
	o.address = address
	return nil
}

// setLocation validates and sets the order's delivery location.
func (o *Order) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.location = location
	return nil
}

func (o *Order) setScheduledDeliveryDate(date time.Time) error {
	if date.IsZero() {
		return errs.NewValueIsRequiredError("scheduledDeliveryDate")
	}
	o.scheduledDeliveryDate = date.UTC()
	return nil
}

// Snapshot returns the current state of the order for persistence adapters.
// Queued domain events are not part of it.
func (o *Order) Snapshot() Snapshot {
	var delivery *DeliveryProof
	if o.delivery != nil {
		d := *o.delivery
		delivery = &d
	}
	var incident *Incident
	if o.incident != nil {
		i := *o.incident
		incident = &i
	}
	return Snapshot{
		ID:                    o.id,
		BatchID:               o.batchID,
		CustomerID:            o.customerID,
		RouteID:               o.RouteID(),
		DeliverySequence:      o.DeliverySequence(),
		Status:                o.status,
		ScheduledDeliveryDate: o.scheduledDeliveryDate,
		Address:               o.address,
		Location:              o.location,
		Items:                 o.Items(),
		Delivery:              delivery,
		Incident:              incident,
		FailureReason:         o.failureReason,
		CreatedAt:             o.createdAt,
		Version:               o.Version(),
	}
}
