package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/crickarena/fantasy-cricket/internal/platform/resilience"
)

type item struct {
	value     any
	expiresAt time.Time
}

func (it item) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && !it.expiresAt.After(now)
}

// Store is an in-process cache with a default TTL and request coalescing for
// concurrent loads of the same key. Leaderboard and roster reads go through
// it so hot endpoints do not hammer the database.
type Store struct {
	mu         sync.RWMutex
	items      map[string]item
	defaultTTL time.Duration
	flight     resilience.SingleFlight
}

func NewStore(defaultTTL time.Duration) *Store {
	return &Store{
		items:      make(map[string]item),
		defaultTTL: defaultTTL,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if it.expired(time.Now()) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, false
	}
	return it.value, true
}

func (s *Store) Set(ctx context.Context, key string, value any) {
	s.SetTTL(ctx, key, value, s.defaultTTL)
}

// SetTTL stores a value with an explicit TTL. A zero or negative TTL keeps
// the value until deleted.
func (s *Store) SetTTL(_ context.Context, key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}

	it := item{value: value}
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// DeletePrefix drops every key under the prefix. Write paths use it to
// invalidate whole tournament namespaces, eg "leaderboard:t1:".
func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.items {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.items, key)
		}
	}
	s.mu.Unlock()
}

// Flush clears the store.
func (s *Store) Flush(_ context.Context) {
	s.mu.Lock()
	s.items = make(map[string]item)
	s.mu.Unlock()
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}
