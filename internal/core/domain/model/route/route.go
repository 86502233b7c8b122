package route

import (
	"errors"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/routing"
	"lastmile/internal/pkg/ddd"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

// ErrRouteIsNotConstructed is returned when a Route was not created through
// NewRoute or RestoreRoute.
var ErrRouteIsNotConstructed = errors.New("Route must be created via NewRoute or RestoreRoute")

// Route is the aggregate root for a delivery run. It owns the stop sequence
// (order id to position) but not the orders themselves; each order keeps its own
// RouteID and DeliverySequence.
//
// Invariants:
//   - a route starts only when Pending with a driver assigned
//   - driver and stops change only while Pending
//   - the timestamps of a state are set exactly when the route reached it
type Route struct {
	ddd.BaseAggregate

	id            kernel.UUID
	batchID       kernel.UUID
	driverID      *kernel.UUID
	zoneID        *kernel.UUID
	status        Status
	scheduledDate time.Time

	createdAt   time.Time
	startedAt   *time.Time
	completedAt *time.Time
	cancelledAt *time.Time

	stops []routing.OrderedWaypoint

	guard guard.ConstructorGuard
}

// NewRoute creates a Pending route without driver and stops. zoneID is optional.
func NewRoute(
	id kernel.UUID,
	batchID kernel.UUID,
	zoneID *kernel.UUID,
	scheduledDate time.Time,
	createdAt time.Time,
) (*Route, error) {
	var errDate error
	if scheduledDate.IsZero() {
		errDate = errs.NewValueIsRequiredError("scheduledDate")
	}
	var errBatch error
	if err := batchID.Validate(); err != nil {
		errBatch = errs.NewValueIsRequiredErrorWithCause("batchID", err)
	}
	var errZone error
	if zoneID != nil {
		errZone = zoneID.Validate()
	}
	if err := errors.Join(id.Validate(), errBatch, errZone, errDate); err != nil {
		return nil, err
	}

	return &Route{
		id:            id,
		batchID:       batchID,
		zoneID:        cloneID(zoneID),
		status:        Pending,
		scheduledDate: scheduledDate.UTC(),
		createdAt:     createdAt.UTC(),
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// Snapshot carries the persisted state of a route for RestoreRoute.
type Snapshot struct {
	ID            kernel.UUID
	BatchID       kernel.UUID
	DriverID      *kernel.UUID
	ZoneID        *kernel.UUID
	Status        Status
	ScheduledDate time.Time
	CreatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	Stops         []routing.OrderedWaypoint
	Version       int
}

// RestoreRoute rebuilds a persisted route without raising events.
func RestoreRoute(s Snapshot) (*Route, error) {
	var errStarted error
	if (s.Status == InProgress || s.Status == Completed) && s.StartedAt == nil {
		errStarted = errs.NewValueIsRequiredErrorWithCause("startedAt", fmt.Errorf("route is %s", s.Status))
	}
	var errDriver error
	if s.StartedAt != nil && s.DriverID == nil {
		errDriver = errs.NewValueIsRequiredErrorWithCause("driverID", errors.New("a started route must have a driver"))
	}
	var errStops error
	if len(s.Stops) > 0 {
		_, errStops = routing.NewOrderedRoute(s.Stops)
	}
	if err := errors.Join(s.ID.Validate(), s.BatchID.Validate(), s.Status.Validate(), errStarted, errDriver, errStops); err != nil {
		return nil, err
	}

	r := &Route{
		BaseAggregate: ddd.RestoreBaseAggregate(s.Version),
		id:            s.ID,
		batchID:       s.BatchID,
		driverID:      cloneID(s.DriverID),
		zoneID:        cloneID(s.ZoneID),
		status:        s.Status,
		scheduledDate: s.ScheduledDate,
		createdAt:     s.CreatedAt,
		startedAt:     s.StartedAt,
		completedAt:   s.CompletedAt,
		cancelledAt:   s.CancelledAt,
		guard:         guard.NewConstructorGuard(),
	}
	if len(s.Stops) > 0 {
		ordered, _ := routing.NewOrderedRoute(s.Stops)
		r.stops = ordered.Stops()
	}
	return r, nil
}

// Validate ensures the route was built through a constructor.
func (r *Route) Validate() error {
	if r == nil {
		return ErrRouteIsNotConstructed
	}
	return r.guard.Validate(ErrRouteIsNotConstructed)
}

// ID returns the route identifier.
func (r *Route) ID() kernel.UUID { return r.id }

// BatchID returns the batch the route delivers.
func (r *Route) BatchID() kernel.UUID { return r.batchID }

// DriverID returns the assigned driver, or nil.
func (r *Route) DriverID() *kernel.UUID { return cloneID(r.driverID) }

// ZoneID returns the delivery zone, or nil.
func (r *Route) ZoneID() *kernel.UUID { return cloneID(r.zoneID) }

func (r *Route) Status() Status           { return r.status }
func (r *Route) ScheduledDate() time.Time { return r.scheduledDate }
func (r *Route) CreatedAt() time.Time     { return r.createdAt }
func (r *Route) StartedAt() *time.Time    { return r.startedAt }
func (r *Route) CompletedAt() *time.Time  { return r.completedAt }
func (r *Route) CancelledAt() *time.Time  { return r.cancelledAt }

// Stops returns the planned stops ordered by sequence.
func (r *Route) Stops() []routing.OrderedWaypoint {
	out := make([]routing.OrderedWaypoint, len(r.stops))
	copy(out, r.stops)
	return out
}

// AssignDriver sets the driver of a Pending route. Re-assigning a Pending route
// replaces the driver.
func (r *Route) AssignDriver(driverID kernel.UUID) error {
	if driverID.IsZero() {
		return errs.NewValueIsRequiredError("driver required")
	}
	if r.status != Pending {
		return errs.NewOperationRejectedError(entityName, r.status, OperationAssignDriver, "cannot change driver")
	}

	id := driverID
	r.driverID = &id
	return nil
}

// SetOrderedWaypoints replaces the stop list of a Pending route with ordered.
// attachedOrderIDs is the set of orders currently on this route; the ordered
// route must cover exactly that set. Raises RoutePlanned.
func (r *Route) SetOrderedWaypoints(ordered routing.OrderedRoute, attachedOrderIDs []kernel.UUID, plannedAt time.Time) error {
	if r.status != Pending {
		return errs.NewOperationRejectedError(entityName, r.status, OperationPlan, "stops can only change while pending")
	}
	if ordered.Len() == 0 {
		return errs.NewValueIsRequiredError("orderedRoute")
	}
	if err := ordered.Matches(attachedOrderIDs); err != nil {
		return err
	}

	at := plannedAt.UTC()
	r.stops = ordered.Stops()
	r.RaiseDomainEvent(RoutePlanned{
		BaseEvent: ddd.NewBaseEvent(PlannedEventName, r.id.String(), at),
		RouteID:   r.id,
		StopCount: len(r.stops),
		PlannedAt: at,
	})
	return nil
}

// Start moves a Pending route with a driver to InProgress and raises RouteStarted.
// A missing driver is reported before the status is considered.
func (r *Route) Start(startedAt time.Time) error {
	if r.driverID == nil {
		return errs.NewInvalidStateTransitionErrorWithReason(entityName, r.status, InProgress, "driver is not assigned")
	}

	next, err := r.status.Start()
	if err != nil {
		return err
	}

	at := startedAt.UTC()
	r.status = next
	r.startedAt = &at
	r.RaiseDomainEvent(RouteStarted{
		BaseEvent: ddd.NewBaseEvent(StartedEventName, r.id.String(), at),
		RouteID:   r.id,
		BatchID:   r.batchID,
		DriverID:  *r.driverID,
		StartedAt: at,
	})
	return nil
}

// Complete moves an InProgress route to Completed and raises RouteCompleted.
//
// Returns:
//   - (true, nil) when the route transitioned
//   - (false, nil) when it was already Completed; nothing changes
//   - (false, errs.InvalidStateTransitionError) from any other status
func (r *Route) Complete(completedAt time.Time) (bool, error) {
	if r.status == Completed {
		return false, nil
	}

	next, err := r.status.Complete()
	if err != nil {
		return false, err
	}

	at := completedAt.UTC()
	r.status = next
	r.completedAt = &at
	r.RaiseDomainEvent(RouteCompleted{
		BaseEvent:   ddd.NewBaseEvent(CompletedEventName, r.id.String(), at),
		RouteID:     r.id,
		BatchID:     r.batchID,
		CompletedAt: at,
	})
	return true, nil
}

// Cancel moves a Pending or InProgress route to Cancelled and raises RouteCancelled.
func (r *Route) Cancel(cancelledAt time.Time) error {
	next, err := r.status.Cancel()
	if err != nil {
		return err
	}

	at := cancelledAt.UTC()
	r.status = next
	r.cancelledAt = &at
	r.RaiseDomainEvent(RouteCancelled{
		BaseEvent:   ddd.NewBaseEvent(CancelledEventName, r.id.String(), at),
		RouteID:     r.id,
		BatchID:     r.batchID,
		CancelledAt: at,
	})
	return nil
}

func cloneID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

// Snapshot returns the current state of the route for persistence adapters.
func (r *Route) Snapshot() Snapshot {
	return Snapshot{
		ID:            r.id,
		BatchID:       r.batchID,
		DriverID:      r.DriverID(),
		ZoneID:        r.ZoneID(),
		Status:        r.status,
		ScheduledDate: r.scheduledDate,
		CreatedAt:     r.createdAt,
		StartedAt:     cloneTime(r.startedAt),
		CompletedAt:   cloneTime(r.completedAt),
		CancelledAt:   cloneTime(r.cancelledAt),
		Stops:         r.Stops(),
		Version:       r.Version(),
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
