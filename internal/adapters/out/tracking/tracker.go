// Package tracking holds the bookkeeping shared by unit of work adapters: the
// identity map of loaded aggregates and the ordered list of aggregates
// registered for insert, update or delete.
package tracking

import (
	"fmt"

	"lastmile/internal/pkg/ddd"
)

// Operation is the pending write registered for an aggregate.
type Operation int

const (
	// Loaded aggregates were read but not registered for a write.
	Loaded Operation = iota
	// Insert aggregates are written with version 1.
	Insert
	// Update aggregates are written with a version check.
	Update
	// Delete aggregates are removed with a version check.
	Delete
)

func (o Operation) String() string {
	switch o {
	case Loaded:
		return "loaded"
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// Entry is one aggregate known to the unit of work.
type Entry struct {
	Kind      string
	ID        string
	Aggregate ddd.AggregateRoot
	Operation Operation
}

// Key identifies an entry by aggregate kind and identifier.
func Key(kind, id string) string {
	return kind + ":" + id
}

// Tracker is not safe for concurrent use; a unit of work belongs to one request.
type Tracker struct {
	byKey   map[string]*Entry
	written []*Entry
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{byKey: make(map[string]*Entry)}
}

// Lookup returns the tracked instance for kind/id, if any.
func (t *Tracker) Lookup(kind, id string) (ddd.AggregateRoot, bool) {
	e, ok := t.byKey[Key(kind, id)]
	if !ok || e.Operation == Delete {
		return nil, false
	}
	return e.Aggregate, true
}

// IsDeleted reports whether kind/id was registered for deletion.
func (t *Tracker) IsDeleted(kind, id string) bool {
	e, ok := t.byKey[Key(kind, id)]
	return ok && e.Operation == Delete
}

// Load registers an aggregate read from storage and returns the instance callers
// must use: the already tracked one when kind/id is known.
func (t *Tracker) Load(kind, id string, aggregate ddd.AggregateRoot) ddd.AggregateRoot {
	if e, ok := t.byKey[Key(kind, id)]; ok {
		return e.Aggregate
	}
	t.byKey[Key(kind, id)] = &Entry{Kind: kind, ID: id, Aggregate: aggregate, Operation: Loaded}
	return aggregate
}

// Track registers a write. The first write of an aggregate fixes its position in
// the commit order. Insert followed by Update stays an Insert; Insert followed by
// Delete drops the entry.
func (t *Tracker) Track(kind, id string, aggregate ddd.AggregateRoot, op Operation) error {
	key := Key(kind, id)
	e, ok := t.byKey[key]
	if !ok {
		e = &Entry{Kind: kind, ID: id, Aggregate: aggregate, Operation: op}
		t.byKey[key] = e
		t.written = append(t.written, e)
		return nil
	}
	if e.Aggregate != aggregate {
		return fmt.Errorf("%s %s is already tracked as a different instance", kind, id)
	}

	switch {
	case e.Operation == Loaded:
		e.Operation = op
		t.written = append(t.written, e)
	case e.Operation == Insert && op == Update:
	case e.Operation == Insert && op == Delete:
		delete(t.byKey, key)
		t.removeWritten(e)
	case e.Operation == Delete && op != Delete:
		return fmt.Errorf("%s %s was removed in this unit of work", kind, id)
	default:
		e.Operation = op
	}
	return nil
}

// Written returns the entries registered for a write in registration order.
func (t *Tracker) Written() []*Entry {
	out := make([]*Entry, len(t.written))
	copy(out, t.written)
	return out
}

// Aggregates returns the aggregates registered for a write in registration order.
// It is the source of domain events drained at commit.
func (t *Tracker) Aggregates() []ddd.AggregateRoot {
	out := make([]ddd.AggregateRoot, 0, len(t.written))
	for _, e := range t.written {
		out = append(out, e.Aggregate)
	}
	return out
}

// Reset forgets everything.
func (t *Tracker) Reset() {
	t.byKey = make(map[string]*Entry)
	t.written = nil
}

func (t *Tracker) removeWritten(target *Entry) {
	for i, e := range t.written {
		if e == target {
			t.written = append(t.written[:i], t.written[i+1:]...)
			return
		}
	}
}
