package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is the sentinel for operations rejected because of the current
	// state of an object: illegal state transitions and lost optimistic races.
	ErrConflict = errors.New("conflict")

	// ErrRouting is the sentinel for failures of the waypoint ordering step.
	ErrRouting = errors.New("routing failed")
)

// InvalidStateTransitionError reports a state machine transition that is not
// allowed from the current state. From and To hold the human-readable state names.
type InvalidStateTransitionError struct {
	Entity string
	From   string
	To     string
	Reason string
}

// NewInvalidStateTransitionError creates an InvalidStateTransitionError.
func NewInvalidStateTransitionError(entity string, from, to fmt.Stringer) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{
		Entity: entity,
		From:   from.String(),
		To:     to.String(),
	}
}

// NewInvalidStateTransitionErrorWithReason creates an InvalidStateTransitionError
// for a transition that is rejected by a precondition other than the state itself.
func NewInvalidStateTransitionErrorWithReason(
	entity string,
	from, to fmt.Stringer,
	reason string,
) *InvalidStateTransitionError {
	err := NewInvalidStateTransitionError(entity, from, to)
	err.Reason = reason
	return err
}

// NewOperationRejectedError creates an InvalidStateTransitionError for an
// operation that the current state does not allow but that is not a status change
// itself, such as planning or detaching. To holds the operation name.
func NewOperationRejectedError(entity string, current fmt.Stringer, operation, reason string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{
		Entity: entity,
		From:   current.String(),
		To:     operation,
		Reason: reason,
	}
}

func (e *InvalidStateTransitionError) Error() string {
	msg := fmt.Sprintf("%s: %s cannot transition from %s to %s", ErrConflict, e.Entity, e.From, e.To)
	if e.Reason != "" {
		return fmt.Sprintf("%s (%s)", msg, e.Reason)
	}
	return msg
}

func (e *InvalidStateTransitionError) Unwrap() error {
	return ErrConflict
}

// ConcurrencyConflictError reports that an aggregate was modified by another writer
// between read and write, or that an insert collided with an existing row.
type ConcurrencyConflictError struct {
	Entity          string
	ID              any
	ExpectedVersion int
	Cause           error
}

// NewConcurrencyConflictError creates a ConcurrencyConflictError.
func NewConcurrencyConflictError(entity string, id any, expectedVersion int) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{
		Entity:          entity,
		ID:              id,
		ExpectedVersion: expectedVersion,
	}
}

// NewConcurrencyConflictErrorWithCause creates a ConcurrencyConflictError wrapping
// the storage error that revealed the conflict.
func NewConcurrencyConflictErrorWithCause(entity string, id any, cause error) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{
		Entity: entity,
		ID:     id,
		Cause:  cause,
	}
}

func (e *ConcurrencyConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %v was modified concurrently (cause: %v)", ErrConflict, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s %v was modified concurrently (expected version %d)",
		ErrConflict, e.Entity, e.ID, e.ExpectedVersion)
}

func (e *ConcurrencyConflictError) Unwrap() error {
	return ErrConflict
}

// RoutingError reports that waypoints could not be put in a delivery order.
type RoutingError struct {
	Reason string
	Cause  error
}

// NewRoutingError creates a RoutingError.
func NewRoutingError(reason string) *RoutingError {
	return &RoutingError{Reason: reason}
}

// NewRoutingErrorWithCause creates a RoutingError wrapping the provider failure.
func NewRoutingErrorWithCause(reason string, cause error) *RoutingError {
	return &RoutingError{Reason: reason, Cause: cause}
}

func (e *RoutingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrRouting, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrRouting, e.Reason)
}

// Unwrap exposes both the routing sentinel and the provider cause, so callers can
// test for ErrRouting as well as context.DeadlineExceeded.
func (e *RoutingError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrRouting, e.Cause}
	}
	return []error{ErrRouting}
}
