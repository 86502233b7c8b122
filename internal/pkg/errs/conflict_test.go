package errs_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state string

func (s state) String() string { return string(s) }

func TestInvalidStateTransitionError(t *testing.T) {
	t.Run("NewInvalidStateTransitionError", func(t *testing.T) {
		err := errs.NewInvalidStateTransitionError("order", state("Delivered"), state("InTransit"))

		assert.Equal(t, "order", err.Entity)
		assert.Equal(t, "Delivered", err.From)
		assert.Equal(t, "InTransit", err.To)
		assert.Equal(t, "conflict: order cannot transition from Delivered to InTransit", err.Error())
		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("with reason", func(t *testing.T) {
		err := errs.NewInvalidStateTransitionErrorWithReason(
			"route", state("Pending"), state("InProgress"), "driver is not assigned")

		assert.Equal(t, "conflict: route cannot transition from Pending to InProgress (driver is not assigned)",
			err.Error())
	})

	t.Run("operation rejected by the current status", func(t *testing.T) {
		err := errs.NewOperationRejectedError("order", state("Cancelled"), "Planned", "only pending orders can be planned")

		assert.Equal(t, "Cancelled", err.From)
		assert.Equal(t, "Planned", err.To)
		assert.Equal(t,
			"conflict: order cannot transition from Cancelled to Planned (only pending orders can be planned)",
			err.Error())
		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("can be extracted with errors.As", func(t *testing.T) {
		var wrapped error = fmt.Errorf("deliver: %w",
			errs.NewInvalidStateTransitionError("order", state("Pending"), state("Delivered")))

		var target *errs.InvalidStateTransitionError
		require.ErrorAs(t, wrapped, &target)
		assert.Equal(t, "Pending", target.From)
	})
}

func TestConcurrencyConflictError(t *testing.T) {
	err := errs.NewConcurrencyConflictError("route", "r-1", 3)

	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Contains(t, err.Error(), "expected version 3")

	withCause := errs.NewConcurrencyConflictErrorWithCause("order", "o-1", errors.New("duplicate key"))
	require.ErrorIs(t, withCause, errs.ErrConflict)
	assert.Contains(t, withCause.Error(), "duplicate key")
}

func TestRoutingError(t *testing.T) {
	err := errs.NewRoutingErrorWithCause("matrix request failed", context.DeadlineExceeded)

	require.ErrorIs(t, err, errs.ErrRouting)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "routing failed: matrix request failed (cause: context deadline exceeded)", err.Error())

	plain := errs.NewRoutingError("no waypoints")
	require.ErrorIs(t, plain, errs.ErrRouting)
	assert.NotErrorIs(t, plain, errs.ErrConflict)
}
