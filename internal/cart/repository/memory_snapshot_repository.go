package repository

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/errors"
)

// MemorySnapshotRepository is used when no external store is configured.
// Carts survive session teardown but not a process restart.
type MemorySnapshotRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{data: make(map[string][]byte)}
}

func (r *MemorySnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payload, ok := r.data[key]
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("cart snapshot %s not found", key))
	}
	return append([]byte(nil), payload...), nil
}

func (r *MemorySnapshotRepository) Save(ctx context.Context, key string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[key] = append([]byte(nil), payload...)
	return nil
}
