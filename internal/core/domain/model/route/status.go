package route

import (
	"fmt"

	"lastmile/internal/pkg/errs"
)

// Status is the lifecycle state of a Route.
type Status int

const (
	// Unknown is the zero value and never valid.
	Unknown Status = iota
	// Pending routes are being planned; driver and stops may still change.
	Pending
	// InProgress routes are being driven.
	InProgress
	// Completed is terminal: every stop reached a final outcome.
	Completed
	// Cancelled is terminal.
	Cancelled
)

const entityName = "route"

// Operations rejected outside Pending, reported as the target of an
// InvalidStateTransitionError.
const (
	OperationAssignDriver = "DriverAssigned"
	OperationPlan         = "Planned"
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "Unknown",
		Pending:    "Pending",
		InProgress: "InProgress",
		Completed:  "Completed",
		Cancelled:  "Cancelled",
	}
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// Validate rejects Unknown and undefined values.
func (s Status) Validate() error {
	if s < Pending || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid route status", s))
	}
	return nil
}

// ParseStatus converts the persisted status name back to a Status.
func ParseStatus(name string) (Status, error) {
	for s, str := range getStatusStrings() {
		if str == name && s != Unknown {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid",
		fmt.Errorf("%q is not a valid route status", name))
}

// IsTerminal reports whether s is Completed or Cancelled.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// Start transitions Pending to InProgress.
func (s Status) Start() (Status, error) {
	if s != Pending {
		return s, errs.NewInvalidStateTransitionError(entityName, s, InProgress)
	}
	return InProgress, nil
}

// Complete transitions InProgress to Completed.
func (s Status) Complete() (Status, error) {
	if s != InProgress {
		return s, errs.NewInvalidStateTransitionError(entityName, s, Completed)
	}
	return Completed, nil
}

// Cancel transitions Pending or InProgress to Cancelled.
func (s Status) Cancel() (Status, error) {
	if s != Pending && s != InProgress {
		return s, errs.NewInvalidStateTransitionError(entityName, s, Cancelled)
	}
	return Cancelled, nil
}
