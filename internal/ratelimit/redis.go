package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter is the part of a redis client RedisStore needs.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// RedisStore is a fixed-window counter. The first hit in a window sets the
// key's expiry, so Redis does the expiry sweep. A blocked key without a TTL
// (first-hit EXPIRE lost) gets one, so a window can never become permanent.
type RedisStore struct {
	client Counter
	prefix string
	limit  int64
	window time.Duration
}

func NewRedisStore(client Counter, prefix string, requests int, window time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		limit:  int64(requests),
		window: window,
	}
}

func (s *RedisStore) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := Key(s.prefix, key)

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, s.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
		return count <= s.limit, nil
	}

	if count > s.limit {
		ttl, err := s.client.TTL(ctx, redisKey).Result()
		if err != nil {
			return false, fmt.Errorf("rate limit ttl: %w", err)
		}
		// -1: key exists without expiry.
		if ttl == -1 {
			if err := s.client.Expire(ctx, redisKey, s.window).Err(); err != nil {
				return false, fmt.Errorf("rate limit expire: %w", err)
			}
		}
	}
	return count <= s.limit, nil
}
