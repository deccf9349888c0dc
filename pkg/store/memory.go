package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/kintree/pkg/family"
)

// MemoryStore keeps members in a map. The zero value is not usable; call
// NewMemoryStore.
type MemoryStore struct {
	mu      sync.RWMutex
	members map[string]family.Member
	now     func() time.Time
}

// NewMemoryStore returns a store seeded with members. Seeded members keep
// their IDs.
func NewMemoryStore(seed ...family.Member) *MemoryStore {
	s := &MemoryStore{members: make(map[string]family.Member, len(seed)), now: time.Now}
	for _, m := range seed {
		s.members[m.ID] = m
	}
	return s
}

func (s *MemoryStore) List(ctx context.Context) ([]family.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]family.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	sortMembers(out)
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (family.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return family.Member{}, ErrNotFound
	}
	return m, nil
}

func (s *MemoryStore) Create(ctx context.Context, m family.Member) (family.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = uuid.NewString()
	m.CreatedAt = s.now().UTC()
	s.members[m.ID] = m
	return m, nil
}

func (s *MemoryStore) Update(ctx context.Context, m family.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[m.ID]; !ok {
		return ErrNotFound
	}
	s.members[m.ID] = m
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return ErrNotFound
	}
	for k, m := range s.members {
		if m.References(id) {
			s.members[k] = m.Unlink(id)
		}
	}
	delete(s.members, id)
	return nil
}

func (s *MemoryStore) SetPosition(ctx context.Context, id string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return ErrNotFound
	}
	s.members[id] = m.WithPosition(x, y)
	return nil
}

func (s *MemoryStore) ClearPositions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, m := range s.members {
		s.members[k] = m.WithoutPosition()
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
