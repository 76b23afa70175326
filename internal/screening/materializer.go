package screening

import (
	"context"

	"github.com/wonny/kquant/internal/contracts"
	"github.com/wonny/kquant/pkg/logger"
)

// Materializer publishes a finished snapshot: it diffs against the current
// one, rotates the two-slot store, and returns the membership changes.
// ⭐ SSOT: 스냅샷 교체는 여기서만
type Materializer struct {
	store  contracts.SnapshotStore
	logger *logger.Logger
}

// NewMaterializer creates a materializer over the given store.
func NewMaterializer(store contracts.SnapshotStore, log *logger.Logger) *Materializer {
	return &Materializer{store: store, logger: log}
}

// Publish rotates snap into the current slot and reports the diff against
// the snapshot it replaced.
func (m *Materializer) Publish(ctx context.Context, snap *contracts.Snapshot) (*contracts.DiffSummary, error) {
	prev, err := m.store.Current(ctx)
	if err != nil {
		return nil, err
	}

	diff := Diff(prev, snap)

	if err := m.store.Rotate(ctx, snap); err != nil {
		return nil, err
	}

	added, removed := 0, 0
	for _, d := range diff.Strategies {
		added += len(d.Added)
		removed += len(d.Removed)
	}
	m.logger.WithFields(map[string]interface{}{
		"date":    snap.Date.Format("2006-01-02"),
		"added":   added,
		"removed": removed,
	}).Info("Published screening snapshot")

	return diff, nil
}
