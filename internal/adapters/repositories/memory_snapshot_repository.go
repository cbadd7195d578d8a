package repositories

import (
	"context"
	"fmt"
	"sync"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/ports"
)

// MemorySnapshotRepository keeps snapshots in process memory. Contents are
// lost on restart.
type MemorySnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]domain.ShareSnapshot
}

func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{snapshots: make(map[string]domain.ShareSnapshot)}
}

var _ ports.SnapshotRepository = (*MemorySnapshotRepository)(nil)

func (m *MemorySnapshotRepository) Save(_ context.Context, snapshot domain.ShareSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.snapshots[snapshot.ID]; ok {
		return fmt.Errorf("save snapshot: id %q already exists", snapshot.ID)
	}

	snapshot.Result = *snapshot.Result.Clone()
	m.snapshots[snapshot.ID] = snapshot
	return nil
}

func (m *MemorySnapshotRepository) Get(_ context.Context, id string) (domain.ShareSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot, ok := m.snapshots[id]
	if !ok {
		return domain.ShareSnapshot{}, apperr.NotFound(fmt.Sprintf("share %q not found", id))
	}

	snapshot.Result = *snapshot.Result.Clone()
	return snapshot, nil
}
