package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process with a sliding TTL.
type MemoryStore struct {
	cache *gocache.Cache
	ttl   time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &MemoryStore{cache: gocache.New(ttl, cleanup), ttl: ttl}
}

func (s *MemoryStore) Get(_ context.Context, id string) (State, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return State{}, ErrNotFound
	}
	return v.(State), nil
}

// Touch restarts the TTL of id. go-cache has no native touch, so this rewrites the
// current value; callers must hold the session's lock.
func (s *MemoryStore) Touch(_ context.Context, id string) error {
	v, ok := s.cache.Get(id)
	if !ok {
		return ErrNotFound
	}
	s.cache.Set(id, v, s.ttl)
	return nil
}

func (s *MemoryStore) Put(_ context.Context, id string, st State) error {
	s.cache.Set(id, st, s.ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}
