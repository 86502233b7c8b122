package batch

import (
	"errors"
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/ddd"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

// ErrBatchIsNotConstructed is returned when a Batch was not created through
// NewBatch or RestoreBatch.
var ErrBatchIsNotConstructed = errors.New("Batch must be created via NewBatch or RestoreBatch")

// Batch is the aggregate root grouping orders prepared for dispatch together.
//
// Invariants:
//   - totalOrders is never negative
//   - closedAt is set if and only if the status is Closed
//   - reservations are accepted only while Open
type Batch struct {
	ddd.BaseAggregate

	id          kernel.UUID
	status      Status
	openedAt    time.Time
	closedAt    *time.Time
	totalOrders int

	guard guard.ConstructorGuard
}

// NewBatch opens a new empty batch.
func NewBatch(id kernel.UUID, openedAt time.Time) (*Batch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if openedAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("openedAt")
	}

	return &Batch{
		id:       id,
		status:   Open,
		openedAt: openedAt.UTC(),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// RestoreBatch rebuilds a persisted batch without raising events.
func RestoreBatch(
	id kernel.UUID,
	status Status,
	openedAt time.Time,
	closedAt *time.Time,
	totalOrders int,
	version int,
) (*Batch, error) {
	var errClosedAt error
	if (status == Closed) != (closedAt != nil) {
		errClosedAt = errs.NewValueIsInvalidErrorWithCause("closedAt",
			fmt.Errorf("closedAt must be set exactly when the batch is closed (status %s)", status))
	}
	var errTotal error
	if totalOrders < 0 {
		errTotal = errs.NewValueIsOutOfRangeError("totalOrders", totalOrders, 0, "unbounded")
	}
	if err := errors.Join(id.Validate(), status.Validate(), errClosedAt, errTotal); err != nil {
		return nil, err
	}

	return &Batch{
		BaseAggregate: ddd.RestoreBaseAggregate(version),
		id:            id,
		status:        status,
		openedAt:      openedAt,
		closedAt:      closedAt,
		totalOrders:   totalOrders,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the batch was built through a constructor.
func (b *Batch) Validate() error {
	if b == nil {
		return ErrBatchIsNotConstructed
	}
	return b.guard.Validate(ErrBatchIsNotConstructed)
}

func (b *Batch) ID() kernel.UUID      { return b.id }
func (b *Batch) Status() Status       { return b.status }
func (b *Batch) OpenedAt() time.Time  { return b.openedAt }
func (b *Batch) ClosedAt() *time.Time { return b.closedAt }
func (b *Batch) TotalOrders() int     { return b.totalOrders }

// IsOpen reports whether orders can still be reserved on the batch.
func (b *Batch) IsOpen() bool { return b.status == Open }

// ReserveOrders counts quantity more orders against the batch.
//
// Returns a validation error when quantity is not positive or when the batch is
// already closed.
func (b *Batch) ReserveOrders(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	if !b.IsOpen() {
		return errs.NewValueIsInvalidErrorWithCause("batch", fmt.Errorf("cannot reserve orders on a closed batch %s", b.id))
	}

	b.totalOrders += quantity
	return nil
}

// Close finalises the batch and raises BatchClosed. Closing twice is a
// validation error.
func (b *Batch) Close(closedAt time.Time) error {
	if !b.IsOpen() {
		return errs.NewValueIsInvalidErrorWithCause("batch", fmt.Errorf("batch %s is already closed", b.id))
	}

	at := closedAt.UTC()
	b.status = Closed
	b.closedAt = &at
	b.RaiseDomainEvent(newBatchClosed(b))
	return nil
}
