package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "engine:run:u1", Key("engine", "run", "u1"))
	assert.Equal(t, "engine:u1", Key("engine", "", "u1"))
	assert.Equal(t, "", Key())
}

func TestMemoryStore_AllowsBurstThenBlocks(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(3, time.Minute)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := s.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok, "hit %d", i)
	}
	ok, _ := s.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = s.Allow(ctx, "b")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = s.Allow(ctx, "a")
	assert.True(t, ok, "bucket refills over the window")
}

func TestMemoryStore_Sweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(1, time.Minute)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = s.Allow(ctx, "old")
	now = now.Add(10 * time.Minute)
	_, _ = s.Allow(ctx, "fresh")

	assert.Equal(t, 1, s.Sweep(5*time.Minute))
	assert.Equal(t, 1, s.Len())
}

type fakeCounter struct {
	counts    map[string]int64
	expires   map[string]time.Duration
	incrErr   error
	expireErr error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.incrErr != nil {
		return redis.NewIntResult(0, f.incrErr)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, d time.Duration) *redis.BoolCmd {
	if f.expireErr != nil {
		return redis.NewBoolResult(false, f.expireErr)
	}
	f.expires[key] = d
	return redis.NewBoolResult(true, nil)
}

// TTL reports -1 for a key with no expiry, like Redis.
func (f *fakeCounter) TTL(_ context.Context, key string) *redis.DurationCmd {
	if d, ok := f.expires[key]; ok {
		return redis.NewDurationResult(d, nil)
	}
	return redis.NewDurationResult(-1, nil)
}

// expireWindow stands in for Redis dropping the key when its TTL runs out.
func (f *fakeCounter) expireWindow(key string) {
	if _, ok := f.expires[key]; ok {
		delete(f.counts, key)
		delete(f.expires, key)
	}
}

func TestRedisStore_FixedWindow(t *testing.T) {
	counter := newFakeCounter()
	s := NewRedisStore(counter, "rl", 2, time.Minute)
	ctx := context.Background()

	ok, err := s.Allow(ctx, "engine:u1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = s.Allow(ctx, "engine:u1")
	assert.True(t, ok)
	ok, _ = s.Allow(ctx, "engine:u1")
	assert.False(t, ok)

	assert.Equal(t, time.Minute, counter.expires["rl:engine:u1"])
	assert.Len(t, counter.expires, 1)
}

func TestRedisStore_Error(t *testing.T) {
	counter := newFakeCounter()
	counter.incrErr = errors.New("connection refused")
	s := NewRedisStore(counter, "rl", 2, time.Minute)

	ok, err := s.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisStore_LostExpiryIsRepaired(t *testing.T) {
	counter := newFakeCounter()
	s := NewRedisStore(counter, "rl", 1, time.Minute)
	ctx := context.Background()

	counter.expireErr = errors.New("i/o timeout")
	_, err := s.Allow(ctx, "admin")
	require.Error(t, err, "first hit fails to set the expiry")
	assert.Empty(t, counter.expires)

	counter.expireErr = nil
	ok, err := s.Allow(ctx, "admin")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, counter.expires["rl:admin"], "blocked key gets a TTL")

	counter.expireWindow("rl:admin")
	ok, err = s.Allow(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, ok, "window ends and the admin is let back in")
}
