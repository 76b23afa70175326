package screening

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/kquant/internal/contracts"
)

func TestMemStoreRotation(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	curr, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, curr)

	first := &contracts.Snapshot{Date: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)}
	second := &contracts.Snapshot{Date: time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)}

	require.NoError(t, store.Rotate(ctx, first))

	curr, err = store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, curr)

	prev, err := store.Previous(ctx)
	require.NoError(t, err)
	assert.Nil(t, prev)

	require.NoError(t, store.Rotate(ctx, second))

	curr, err = store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, curr)

	prev, err = store.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, prev)
}

func TestMaterializerPublish(t *testing.T) {
	store := NewMemStore()
	m := NewMaterializer(store, testLogger())
	ctx := context.Background()

	date := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	snap := snapshotWithMembers(date, contracts.StrategyQuality, "000100")

	diff, err := m.Publish(ctx, snap)
	require.NoError(t, err)

	d := findDiff(diff, contracts.StrategyQuality)
	assert.Equal(t, []string{"000100"}, d.Added)

	curr, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, curr)

	// 두 번째 발행은 직전 스냅샷과 비교됨
	next := snapshotWithMembers(date.AddDate(0, 0, 1), contracts.StrategyQuality, "000100", "000200")
	diff, err = m.Publish(ctx, next)
	require.NoError(t, err)

	d = findDiff(diff, contracts.StrategyQuality)
	assert.Equal(t, []string{"000200"}, d.Added)
	assert.Empty(t, d.Removed)
}
