package tracking

import "lastmile/internal/pkg/ddd"

// MergeLoaded reconciles a list read from storage with the tracker so list
// queries see the unit of work's own changes.
//
//   - stored rows already tracked are replaced by the tracked instance
//   - rows registered for deletion are dropped
//   - tracked instances that are not in stored but satisfy keep are appended
//
// idOf returns the identifier of an aggregate. The result is unordered; callers
// sort it.
func MergeLoaded[T ddd.AggregateRoot](
	t *Tracker,
	kind string,
	stored []T,
	idOf func(T) string,
	keep func(T) bool,
) []T {
	out := make([]T, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))

	for _, agg := range stored {
		id := idOf(agg)
		seen[id] = struct{}{}
		if t.IsDeleted(kind, id) {
			continue
		}
		tracked, _ := t.Load(kind, id, agg).(T)
		if !keep(tracked) {
			continue
		}
		out = append(out, tracked)
	}

	for _, e := range t.byKey {
		if e.Kind != kind || e.Operation == Delete {
			continue
		}
		if _, ok := seen[e.ID]; ok {
			continue
		}
		agg, ok := e.Aggregate.(T)
		if ok && keep(agg) {
			out = append(out, agg)
		}
	}
	return out
}
