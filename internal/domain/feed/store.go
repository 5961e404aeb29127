package feed

import "context"

// Store supplies the shared event collection the engine computes over.
// The engine itself is a pure, replayable computation; the store owns the
// state and the concurrency guarantees.
//
// Implementations must provide:
//   - Snapshot: a consistent copy of the collection. Callers own the returned
//     events; mutating them must not affect the store.
//   - Read-your-writes: a mutation that returned before a Snapshot began is
//     visible in that snapshot, even under concurrent access.
//   - Mutual exclusion of writes with each other and with in-flight reads.
//
// Snapshot order matters: events come newest-first within each category,
// categories in their fixed feed order. Sorting downstream is stable, so
// this order is the tie-break of last resort.
type Store interface {
	// Snapshot returns a deep copy of every event in the collection.
	Snapshot(ctx context.Context) ([]*Event, error)

	// Append inserts a new event at the head of its category.
	Append(ctx context.Context, e *Event) error

	// MarkRead sets the read flag on one event. Unknown IDs are a no-op,
	// not an error; the operation is idempotent.
	MarkRead(ctx context.Context, id EventID) error

	// MarkAllRead sets the read flag on every event. Idempotent.
	MarkAllRead(ctx context.Context) error
}
