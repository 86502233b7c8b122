// Package kafka publishes outbox messages as integration events.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lastmile/internal/adapters/out/outbox"
	"lastmile/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// Message headers set on every published event.
const (
	HeaderMessageID  = "message-id"
	HeaderEventName  = "event-name"
	HeaderOccurredAt = "occurred-at"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config configures the producer.
type Config struct {
	Brokers      []string
	TopicPrefix  string
	BatchTimeout time.Duration
}

// Publisher writes outbox messages to "<prefix>.<event name>" topics keyed by
// aggregate id, so the events of one aggregate stay ordered within a partition.
type Publisher struct {
	writer      messageWriter
	topicPrefix string
}

var _ ports.MessagePublisher = (*Publisher)(nil)

// NewPublisher creates a synchronous producer that waits for all in-sync
// replicas to acknowledge.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batchTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(writer, cfg.TopicPrefix), nil
}

func newPublisher(writer messageWriter, topicPrefix string) *Publisher {
	return &Publisher{writer: writer, topicPrefix: topicPrefix}
}

// Publish writes messages in one call. kafka-go reports per-message failures
// as kafka.WriteErrors; any failure fails the whole call and the relay retries
// the batch.
func (p *Publisher) Publish(ctx context.Context, messages ...ports.OutboxMessage) error {
	if len(messages) == 0 {
		return nil
	}

	out := make([]kafka.Message, len(messages))
	for i, msg := range messages {
		out[i] = p.toKafka(msg)
	}

	if err := p.writer.WriteMessages(ctx, out...); err != nil {
		return fmt.Errorf("write %d messages to kafka: %w", len(out), err)
	}
	return nil
}

func (p *Publisher) toKafka(msg ports.OutboxMessage) kafka.Message {
	return kafka.Message{
		Topic: outbox.Topic(p.topicPrefix, msg.EventName),
		Key:   []byte(msg.AggregateID),
		Value: msg.Payload,
		Time:  msg.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderMessageID, Value: []byte(msg.ID.String())},
			{Key: HeaderEventName, Value: []byte(msg.EventName)},
			{Key: HeaderOccurredAt, Value: []byte(msg.OccurredAt.UTC().Format(time.RFC3339Nano))},
		},
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
