// Package ddd contains the building blocks shared by aggregates: the domain
// event contract, an embeddable event queue with an optimistic-concurrency
// version, and the loop that drains queued events until they settle.
package ddd

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is an immutable fact raised by an aggregate. Events are queued on
// the aggregate and dispatched when the surrounding unit of work commits.
type DomainEvent interface {
	// EventID uniquely identifies this occurrence.
	EventID() uuid.UUID
	// EventName is a stable dotted name such as "delivery.route.started".
	EventName() string
	// AggregateID is the identifier of the aggregate that raised the event.
	AggregateID() string
	// OccurredAt is the domain time of the fact.
	OccurredAt() time.Time
}

// BaseEvent implements DomainEvent and is embedded by concrete events.
type BaseEvent struct {
	id          uuid.UUID
	name        string
	aggregateID string
	occurredAt  time.Time
}

// NewBaseEvent stamps a fresh event id.
func NewBaseEvent(name, aggregateID string, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		id:          uuid.New(),
		name:        name,
		aggregateID: aggregateID,
		occurredAt:  occurredAt,
	}
}

func (e BaseEvent) EventID() uuid.UUID    { return e.id }
func (e BaseEvent) EventName() string     { return e.name }
func (e BaseEvent) AggregateID() string   { return e.aggregateID }
func (e BaseEvent) OccurredAt() time.Time { return e.occurredAt }
