// Package outbox turns dispatched domain events into outbox messages and relays
// unpublished messages to the message broker.
//
// Messages are written by the unit of work in the same transaction as the state
// change that raised the event, so an event is never published for a change that
// was rolled back. Relaying is at-least-once.
package outbox

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/ddd"
)

// Envelope is the JSON document stored as the message payload.
type Envelope struct {
	EventID     string          `json:"eventId"`
	EventName   string          `json:"eventName"`
	AggregateID string          `json:"aggregateId"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Data        json.RawMessage `json:"data"`
}

// NewMessage serializes event into an outbox message. The event's exported fields
// become the envelope data.
func NewMessage(event ddd.DomainEvent, createdAt time.Time) (ports.OutboxMessage, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return ports.OutboxMessage{}, fmt.Errorf("encode %s: %w", event.EventName(), err)
	}

	payload, err := json.Marshal(Envelope{
		EventID:     event.EventID().String(),
		EventName:   event.EventName(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt().UTC(),
		Data:        data,
	})
	if err != nil {
		return ports.OutboxMessage{}, fmt.Errorf("encode envelope of %s: %w", event.EventName(), err)
	}

	return ports.OutboxMessage{
		ID:          event.EventID(),
		EventName:   event.EventName(),
		AggregateID: event.AggregateID(),
		Payload:     payload,
		OccurredAt:  event.OccurredAt().UTC(),
		CreatedAt:   createdAt.UTC(),
	}, nil
}

// NewMessages encodes events in order.
func NewMessages(events []ddd.DomainEvent, createdAt time.Time) ([]ports.OutboxMessage, error) {
	messages := make([]ports.OutboxMessage, 0, len(events))
	for _, event := range events {
		msg, err := NewMessage(event, createdAt)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Topic returns the broker topic for eventName, "<prefix>.<eventName>".
// An empty prefix yields the event name alone.
func Topic(prefix, eventName string) string {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return eventName
	}
	return prefix + "." + eventName
}
