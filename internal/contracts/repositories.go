package contracts

import "context"

// DataRepository reads the latest collected snapshot of every input table.
// The engine never reads historical snapshots.
type DataRepository interface {
	LoadBatch(ctx context.Context) (*Batch, error)
}

// SnapshotStore is the two-slot (current, previous) result store.
// Rotate atomically makes snap the current snapshot and the old current the
// previous one, so a reader always observes a coherent pair.
type SnapshotStore interface {
	Current(ctx context.Context) (*Snapshot, error)
	Previous(ctx context.Context) (*Snapshot, error)
	Rotate(ctx context.Context, snap *Snapshot) error
}
