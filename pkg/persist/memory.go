package persist

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps the snapshot in memory. Useful for tests and for
// processes that only need restore-on-reconnect semantics.
type MemoryStore struct {
	mu   sync.RWMutex
	snap map[string]json.RawMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the stored snapshot with a copy of snap.
func (s *MemoryStore) Save(_ context.Context, snap map[string]json.RawMessage) error {
	copied := make(map[string]json.RawMessage, len(snap))
	for name, data := range snap {
		copied[name] = append(json.RawMessage(nil), data...)
	}
	s.mu.Lock()
	s.snap = copied
	s.mu.Unlock()
	return nil
}

// Load returns a copy of the stored snapshot.
func (s *MemoryStore) Load(_ context.Context) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrNotFound
	}
	copied := make(map[string]json.RawMessage, len(s.snap))
	for name, data := range s.snap {
		copied[name] = append(json.RawMessage(nil), data...)
	}
	return copied, nil
}
