package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps committed state in a map. Used for tests and for
// running the node without a database path.
type MemoryBackend struct {
	mu sync.RWMutex
	db map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{db: make(map[string]string)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) (*string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.db[key]
	if !ok {
		return nil, nil
	}
	return &val, nil
}

func (m *MemoryBackend) Apply(_ context.Context, writes []Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range writes {
		if w.Value == nil {
			delete(m.db, w.Key)
			continue
		}
		m.db[w.Key] = *w.Value
	}
	return nil
}

// Len is the number of committed keys.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.db)
}

func (m *MemoryBackend) Close() error { return nil }
