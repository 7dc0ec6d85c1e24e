package contacts

import (
	"context"
	"sync"

	"zvgcli/pkg/contracts/domain"
)

// MemoryStore keeps the history in process memory. It backs tests and
// one-shot CLI runs where persistence across invocations is not wanted.
type MemoryStore struct {
	mu      sync.RWMutex
	history domain.ContactHistory
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{history: make(domain.ContactHistory)}
}

func (s *MemoryStore) Load(ctx context.Context) (domain.ContactHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, history domain.ContactHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = history.Clone()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
