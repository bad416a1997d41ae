package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/novapay/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.State
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.State),
	}
}

// Save persists a copy of the state in memory.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	copied := state.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load retrieves a copy of the state so callers can't mutate the store by pointer.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state.Clone(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active sessions in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
