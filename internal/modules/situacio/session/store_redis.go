package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "situacio:session:"

// RedisStore keeps sessions as JSON values so several server replicas can share them.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *goredis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (State, error) {
	raw, err := s.rdb.GetEx(ctx, redisKeyPrefix+id, s.ttl).Bytes()
	if errors.Is(err, goredis.Nil) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("redis get session: %w", err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("decode session: %w", err)
	}
	return st, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.rdb.Set(ctx, redisKeyPrefix+id, raw, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, redisKeyPrefix+id).Err()
}
