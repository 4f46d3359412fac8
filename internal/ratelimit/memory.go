package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryStore is a token bucket per key. Idle keys accumulate until Sweep
// is called.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	rate    rate.Limit
	burst   int
	now     func() time.Time
}

// NewMemoryStore allows requests hits per window, all of which may arrive
// in a burst.
func NewMemoryStore(requests int, window time.Duration) *MemoryStore {
	if requests < 1 {
		requests = 1
	}
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		rate:    rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		now:     time.Now,
	}
}

func (s *MemoryStore) Allow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok {
		entry = &memoryEntry{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1), nil
}

// Sweep drops keys not seen for idle and returns how many were removed.
func (s *MemoryStore) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	removed := 0
	for key, entry := range s.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
