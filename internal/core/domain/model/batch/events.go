package batch

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/ddd"
)

// ClosedEventName is the name of BatchClosed.
const ClosedEventName = "delivery.batch.closed"

// BatchClosed is raised when a batch stops accepting orders.
type BatchClosed struct {
	ddd.BaseEvent
	BatchID     kernel.UUID
	TotalOrders int
	ClosedAt    time.Time
}

func newBatchClosed(b *Batch) BatchClosed {
	return BatchClosed{
		BaseEvent:   ddd.NewBaseEvent(ClosedEventName, b.id.String(), *b.closedAt),
		BatchID:     b.id,
		TotalOrders: b.totalOrders,
		ClosedAt:    *b.closedAt,
	}
}
