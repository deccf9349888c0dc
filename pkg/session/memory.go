package session

import (
	"context"
	"sync"
)

// MemoryStore keeps session state in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (s *MemoryStore) Get(ctx context.Context, tree string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[tree]
	if !ok {
		return nil, ErrNotFound
	}
	st.Layout = clone(st.Layout)
	return &st, nil
}

func (s *MemoryStore) Set(ctx context.Context, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	cp.Layout = clone(st.Layout)
	s.states[st.Tree] = cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, tree string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, tree)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
