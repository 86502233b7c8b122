package ddd

import (
	"context"
	"errors"
	"fmt"
)

// DefaultMaxDispatchRounds bounds how many waves of follow-up events a single
// commit may produce.
const DefaultMaxDispatchRounds = 10

// ErrEventCascade is returned when queued events do not settle within the round
// limit, or when an already dispatched event is seen again. Both indicate a
// handler cycle and abort the commit.
var ErrEventCascade = errors.New("domain event cascade did not settle")

// DispatchFunc delivers one event to its handlers. Handlers may mutate and track
// more aggregates, which queues more events for the next round.
type DispatchFunc func(ctx context.Context, event DomainEvent) error

// DrainEvents repeatedly pulls queued events from the aggregates returned by
// tracked and passes them to dispatch, until a round finds nothing queued.
//
// tracked is called at the start of every round so aggregates registered by
// handlers are picked up. Within a round aggregates are visited in the order
// tracked returns them and events in emission order. The returned slice holds
// every dispatched event in dispatch order.
func DrainEvents(
	ctx context.Context,
	tracked func() []AggregateRoot,
	dispatch DispatchFunc,
	maxRounds int,
) ([]DomainEvent, error) {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxDispatchRounds
	}

	var dispatched []DomainEvent
	seen := make(map[string]struct{})

	for round := 0; ; round++ {
		var pending []DomainEvent
		for _, aggregate := range tracked() {
			pending = append(pending, aggregate.PullDomainEvents()...)
		}
		if len(pending) == 0 {
			return dispatched, nil
		}
		if round >= maxRounds {
			return dispatched, fmt.Errorf("%w: still %d events pending after %d rounds",
				ErrEventCascade, len(pending), maxRounds)
		}

		for _, event := range pending {
			if err := ctx.Err(); err != nil {
				return dispatched, err
			}

			id := event.EventID().String()
			if _, ok := seen[id]; ok {
				return dispatched, fmt.Errorf("%w: event %s (%s) was queued twice",
					ErrEventCascade, id, event.EventName())
			}
			seen[id] = struct{}{}

			if err := dispatch(ctx, event); err != nil {
				return dispatched, fmt.Errorf("dispatch %s: %w", event.EventName(), err)
			}
			dispatched = append(dispatched, event)
		}
	}
}
