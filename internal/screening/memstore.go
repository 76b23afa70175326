package screening

import (
	"context"
	"sync"

	"github.com/wonny/kquant/internal/contracts"
)

// MemStore is an in-memory two-slot snapshot store. 테스트와 단발성 CLI 실행
// 용도이고, 상시 운영은 dataset.SnapshotStore가 맡음.
type MemStore struct {
	mu       sync.RWMutex
	current  *contracts.Snapshot
	previous *contracts.Snapshot
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Current returns the current snapshot, nil when none was published yet.
func (s *MemStore) Current(ctx context.Context) (*contracts.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

// Previous returns the snapshot before the current one.
func (s *MemStore) Previous(ctx context.Context) (*contracts.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previous, nil
}

// Rotate makes snap current and demotes the old current to previous.
func (s *MemStore) Rotate(ctx context.Context, snap *contracts.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previous = s.current
	s.current = snap
	return nil
}
