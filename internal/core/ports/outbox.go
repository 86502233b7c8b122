package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxMessage is a domain event serialized in the same transaction as the
// state change that raised it, waiting to be relayed to the message broker.
type OutboxMessage struct {
	ID          uuid.UUID
	EventName   string
	AggregateID string
	Payload     []byte
	OccurredAt  time.Time
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// OutboxStore reads unpublished messages and marks them as relayed.
type OutboxStore interface {
	GetUnpublished(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, publishedAt time.Time) error
}

// MessagePublisher sends outbox messages to the message broker.
// Delivery is at-least-once: a message may be published again if marking it
// fails afterwards.
type MessagePublisher interface {
	Publish(ctx context.Context, messages ...OutboxMessage) error
	Close() error
}
