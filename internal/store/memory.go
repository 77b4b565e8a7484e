// ABOUTME: In-memory token store
// ABOUTME: Used by tests and when no config directory is available

package store

import "sync"

// MemoryStore keeps the token in process memory only
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

var _ TokenStore = (*MemoryStore)(nil)

// NewMemoryStore returns a store preloaded with token (may be empty)
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
