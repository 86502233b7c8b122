package order

import (
	"fmt"

	"lastmile/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> InTransit ──> Delivered
//	   │            │
//	   └─────┬──────┘
//	         ├──> Cancelled
//	         └──> Failed
//
// Delivered, Cancelled and Failed are terminal: no transition leaves them.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status. The order waits for its route to start and
	// may still be attached to or detached from a route.
	Pending

	// InTransit means the driver is on the way with the order.
	InTransit

	// Delivered is terminal: the order was handed over with a proof of delivery.
	Delivered

	// Cancelled is terminal: the order will not be delivered.
	Cancelled

	// Failed is terminal: delivery was attempted or planned and did not succeed.
	Failed
)

const entityName = "order"

// Operations that are not status changes, reported as the target of an
// InvalidStateTransitionError when the current status rejects them.
const (
	OperationAddItem        = "ItemAdded"
	OperationReportIncident = "IncidentReported"
	OperationPlan           = "Planned"
	OperationDetach         = "Detached"
	OperationRelease        = "Released"
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Pending:   "Pending",
		InTransit: "InTransit",
		Delivered: "Delivered",
		Cancelled: "Cancelled",
		Failed:    "Failed",
	}
}

// Validate checks if the Status value is one of the defined lifecycle states.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if s < Pending || s > Failed {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status and implements fmt.Stringer.
//
// Example:
//
//	fmt.Println(order.Status()) // Output: "InTransit"
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// ParseStatus converts the persisted status name back to a Status.
func ParseStatus(name string) (Status, error) {
	for s, str := range getStatusStrings() {
		if str == name && s != Unknown {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", name))
}

// IsTerminal reports whether no further transition is legal from s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled || s == Failed
}

// TerminalStatuses lists the statuses that end the lifecycle of an order.
func TerminalStatuses() []Status {
	return []Status{Delivered, Cancelled, Failed}
}

// StartTransit transitions the status to InTransit.
//
// Valid transitions:
//   - Pending -> InTransit
//
// InTransit -> InTransit is rejected as well, so a duplicated RouteStarted
// reaction is reported instead of silently succeeding.
func (s Status) StartTransit() (Status, error) {
	if s != Pending {
		return s, errs.NewInvalidStateTransitionError(entityName, s, InTransit)
	}
	return InTransit, nil
}

// Deliver transitions the status to Delivered. Only InTransit orders can be delivered.
func (s Status) Deliver() (Status, error) {
	if s != InTransit {
		return s, errs.NewInvalidStateTransitionError(entityName, s, Delivered)
	}
	return Delivered, nil
}

// Fail transitions the status to Failed from Pending or InTransit.
func (s Status) Fail() (Status, error) {
	if s != Pending && s != InTransit {
		return s, errs.NewInvalidStateTransitionError(entityName, s, Failed)
	}
	return Failed, nil
}

// Cancel transitions the status to Cancelled from Pending or InTransit.
func (s Status) Cancel() (Status, error) {
	if s != Pending && s != InTransit {
		return s, errs.NewInvalidStateTransitionError(entityName, s, Cancelled)
	}
	return Cancelled, nil
}
