package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/kintree/pkg/cache"
)

// CacheStore keeps session state in a cache.Cache under "session:<tree>".
// Backed by a RedisCache it lets several server instances share state.
type CacheStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewCacheStore wraps c. A zero ttl uses DefaultTTL.
func NewCacheStore(c cache.Cache, ttl time.Duration) *CacheStore {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &CacheStore{cache: c, ttl: ttl}
}

func cacheKey(tree string) string { return "session:" + tree }

func (s *CacheStore) Get(ctx context.Context, tree string) (*State, error) {
	data, ok, err := s.cache.Get(ctx, cacheKey(tree))
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &st, nil
}

func (s *CacheStore) Set(ctx context.Context, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.cache.Set(ctx, cacheKey(st.Tree), data, s.ttl)
}

func (s *CacheStore) Delete(ctx context.Context, tree string) error {
	return s.cache.Delete(ctx, cacheKey(tree))
}

// Close does not close the underlying cache, which is usually shared.
func (s *CacheStore) Close() error { return nil }

var _ Store = (*CacheStore)(nil)
