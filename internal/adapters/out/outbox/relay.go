package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/metrics"

	"github.com/google/uuid"
)

// DefaultBatchSize is used when the configured batch size is not positive.
const DefaultBatchSize = 100

// Relay moves unpublished outbox messages to the broker. A message is marked as
// published only after the broker acknowledged it, so a crash in between
// publishes it again on the next run.
type Relay struct {
	store     ports.OutboxStore
	publisher ports.MessagePublisher
	batchSize int
	now       func() time.Time
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewRelay creates a relay. m may be nil.
func NewRelay(
	store ports.OutboxStore,
	publisher ports.MessagePublisher,
	batchSize int,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*Relay, error) {
	if store == nil {
		return nil, errors.New("outbox store is required")
	}
	if publisher == nil {
		return nil, errors.New("message publisher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Relay{
		store:     store,
		publisher: publisher,
		batchSize: batchSize,
		now:       time.Now,
		metrics:   m,
		logger:    logger.With("component", "outbox-relay"),
	}, nil
}

// RelayOnce publishes at most one batch and returns how many messages were
// marked as published.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	messages, err := r.store.GetUnpublished(ctx, r.batchSize)
	if err != nil {
		r.metrics.RecordOutboxRelay(0, 0, true)
		return 0, fmt.Errorf("load unpublished outbox messages: %w", err)
	}
	if len(messages) == 0 {
		r.metrics.RecordOutboxRelay(0, 0, false)
		return 0, nil
	}

	if err = r.publisher.Publish(ctx, messages...); err != nil {
		r.metrics.RecordOutboxRelay(len(messages), 0, true)
		return 0, fmt.Errorf("publish %d outbox messages: %w", len(messages), err)
	}

	ids := make([]uuid.UUID, len(messages))
	for i, msg := range messages {
		ids[i] = msg.ID
	}
	if err = r.store.MarkPublished(ctx, ids, r.now()); err != nil {
		r.metrics.RecordOutboxRelay(len(messages), 0, true)
		r.logger.WarnContext(ctx, "messages were published but not marked, they will be sent again",
			"count", len(ids), "error", err)
		return 0, fmt.Errorf("mark outbox messages as published: %w", err)
	}

	r.metrics.RecordOutboxRelay(len(messages), len(messages), false)
	r.logger.DebugContext(ctx, "relayed outbox messages", "count", len(messages))
	return len(messages), nil
}
