package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process ImageStore for tests and local runs
// without MongoDB.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (m *MemoryStore) Put(_ context.Context, _, _ string, r io.Reader) (string, int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	id := uuid.NewString()
	m.mu.Lock()
	m.objects[id] = b
	m.mu.Unlock()
	return id, int64(len(b)), nil
}

func (m *MemoryStore) Open(_ context.Context, objectID string) (io.ReadCloser, error) {
	m.mu.RLock()
	b, ok := m.objects[objectID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *MemoryStore) Delete(_ context.Context, objectID string) error {
	m.mu.Lock()
	delete(m.objects, objectID)
	m.mu.Unlock()
	return nil
}

// Len reports how many objects are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
