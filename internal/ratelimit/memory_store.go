package ratelimit

import (
	"context"
	"sync"
	"time"
)

// gcEvery is the number of lookups between sweeps of idle keys
const gcEvery = 5000

type fixedCounter struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps counters in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	hits    map[string][]time.Time
	windows map[string]time.Duration
	fixed   map[string]*fixedCounter
	lookups uint64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:     time.Now,
		hits:    make(map[string][]time.Time),
		windows: make(map[string]time.Duration),
		fixed:   make(map[string]*fixedCounter),
	}
}

// WithClock replaces the store's time source
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// SlidingWindow implements Store
func (s *MemoryStore) SlidingWindow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collect(now)

	hits := s.hits[key]
	valid := hits[:0]
	for _, t := range hits {
		if now.Sub(t) < window {
			valid = append(valid, t)
		}
	}

	d := Decision{Limit: limit}
	if len(valid) >= limit {
		s.hits[key] = valid
		d.Count = len(valid)
		d.ResetAt = valid[0].Add(window)
		return d, nil
	}

	valid = append(valid, now)
	s.hits[key] = valid
	s.windows[key] = window
	d.Allowed = true
	d.Count = len(valid)
	d.ResetAt = valid[0].Add(window)
	return d, nil
}

// FixedWindow implements Store
func (s *MemoryStore) FixedWindow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collect(now)

	c, ok := s.fixed[key]
	if !ok || !now.Before(c.resetAt) {
		c = &fixedCounter{resetAt: now.Add(window)}
		s.fixed[key] = c
	}
	c.count++

	return Decision{
		Allowed: c.count <= limit,
		Count:   c.count,
		Limit:   limit,
		ResetAt: c.resetAt,
	}, nil
}

// collect drops keys whose windows are fully in the past. It runs once every
// gcEvery lookups; callers hold s.mu.
func (s *MemoryStore) collect(now time.Time) {
	s.lookups++
	if s.lookups < gcEvery {
		return
	}
	s.lookups = 0

	for key, hits := range s.hits {
		if len(hits) == 0 || now.Sub(hits[len(hits)-1]) >= s.windows[key] {
			delete(s.hits, key)
			delete(s.windows, key)
		}
	}
	for key, c := range s.fixed {
		if !now.Before(c.resetAt) {
			delete(s.fixed, key)
		}
	}
}

// Len reports how many keys currently hold state
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits) + len(s.fixed)
}
