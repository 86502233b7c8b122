package ddd

// AggregateRoot is what a unit of work needs from a tracked aggregate in order to
// drain its events and persist it.
type AggregateRoot interface {
	// DomainEvents returns a copy of the events queued since the last pull.
	DomainEvents() []DomainEvent
	// PullDomainEvents returns the queued events and empties the queue.
	PullDomainEvents() []DomainEvent
	// Version is the persisted version the aggregate was loaded with, 0 if new.
	Version() int
	// SetVersion records the version written by the store.
	SetVersion(version int)
}

// BaseAggregate is embedded by aggregate roots. Events are appended in emission
// order and only removed by PullDomainEvents or ClearDomainEvents.
type BaseAggregate struct {
	events  []DomainEvent
	version int
}

// RestoreBaseAggregate is used by Restore* constructors when rehydrating an
// aggregate from storage.
func RestoreBaseAggregate(version int) BaseAggregate {
	return BaseAggregate{version: version}
}

// RaiseDomainEvent queues e.
func (a *BaseAggregate) RaiseDomainEvent(e DomainEvent) {
	a.events = append(a.events, e)
}

func (a *BaseAggregate) DomainEvents() []DomainEvent {
	out := make([]DomainEvent, len(a.events))
	copy(out, a.events)
	return out
}

func (a *BaseAggregate) PullDomainEvents() []DomainEvent {
	out := a.events
	a.events = nil
	return out
}

// ClearDomainEvents drops queued events without returning them.
func (a *BaseAggregate) ClearDomainEvents() {
	a.events = nil
}

func (a *BaseAggregate) Version() int {
	return a.version
}

func (a *BaseAggregate) SetVersion(version int) {
	a.version = version
}
