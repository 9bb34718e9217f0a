package credentials

import (
	"context"
	"sync"
)

// MemoryStore is a process-local credential store for tests and ephemeral
// runs where persistence across restarts is not wanted.
type MemoryStore struct {
	mu   sync.Mutex
	pair Pair
	set  bool
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) (Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return Pair{}, ErrNoCredentials
	}
	return s.pair, nil
}

func (s *MemoryStore) Set(_ context.Context, pair Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.set = true
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	s.set = false
	return nil
}
