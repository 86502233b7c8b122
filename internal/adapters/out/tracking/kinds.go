package tracking

import (
	"context"
	"errors"

	"lastmile/internal/pkg/ddd"
	"lastmile/internal/pkg/errs"
)

// Aggregate kinds used as tracker keys and in concurrency errors.
const (
	KindOrder  = "order"
	KindRoute  = "route"
	KindBatch  = "batch"
	KindDriver = "driver"
)

// CommitResult classifies a commit error for metrics: ok, conflict, cascade,
// canceled or error.
func CommitResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrConflict):
		return "conflict"
	case errors.Is(err, ddd.ErrEventCascade):
		return "cascade"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
