package persist

import (
	"context"
	"errors"
	"sync"
)

// MemoryBlobs is an in-memory backend used in tests and as a fallback when
// the device has no writable disk.
type MemoryBlobs struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// FailSets makes the next N Set calls fail; tests use it to exercise
	// the retry budget.
	FailSets int
	SetErr   error
}

func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{blobs: make(map[string][]byte)}
}

func (m *MemoryBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.blobs[key]
	if !ok {
		return nil, ErrNoBlob
	}
	copied := make([]byte, len(val))
	copy(copied, val)
	return copied, nil
}

func (m *MemoryBlobs) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSets > 0 {
		m.FailSets--
		if m.SetErr != nil {
			return m.SetErr
		}
		return errors.New("memory: set failed")
	}
	copied := make([]byte, len(value))
	copy(copied, value)
	m.blobs[key] = copied
	return nil
}

func (m *MemoryBlobs) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}
