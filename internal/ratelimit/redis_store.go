package ratelimit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vx-landing/pkg/redis"
)

// RedisStore shares counters between instances through Redis. Keys are
// namespaced by the client's environment prefix.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore creates a store backed by client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// WithClock replaces the store's time source
func (s *RedisStore) WithClock(now func() time.Time) *RedisStore {
	s.now = now
	return s
}

// SlidingWindow implements Store
func (s *RedisStore) SlidingWindow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	res, err := s.client.SlidingWindow(ctx, s.key(key), uuid.NewString(), s.now(), limit, window)
	if err != nil {
		return Decision{}, err
	}
	return decision(res, limit), nil
}

// FixedWindow implements Store
func (s *RedisStore) FixedWindow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	res, err := s.client.FixedWindow(ctx, s.key(key), s.now(), limit, window)
	if err != nil {
		return Decision{}, err
	}
	return decision(res, limit), nil
}

func (s *RedisStore) key(key string) string {
	return s.client.KeyBuilder.KeyRateLimit(key)
}

func decision(res redis.WindowResult, limit int) Decision {
	return Decision{
		Allowed: res.Allowed,
		Count:   int(res.Count),
		Limit:   limit,
		ResetAt: res.ResetAt,
	}
}
