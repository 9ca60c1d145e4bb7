package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps all guard state in process memory. Suitable for a
// single-process deployment; limits are not shared across replicas.
type MemoryStore struct {
	mu         sync.Mutex
	hits       map[string][]time.Time
	violations map[string]violationEntry
	blocks     map[string]time.Time

	now func() time.Time // overridable in tests
}

type violationEntry struct {
	count   int64
	expires time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hits:       make(map[string][]time.Time),
		violations: make(map[string]violationEntry),
		blocks:     make(map[string]time.Time),
		now:        time.Now,
	}
}

// Hit records a request and returns the count in the trailing window.
// The mutex makes the prune-append-count sequence atomic, so concurrent
// requests never undercount.
func (s *MemoryStore) Hit(_ context.Context, id string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)
	kept := s.hits[id][:0]
	for _, t := range s.hits[id] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	s.hits[id] = kept
	return int64(len(kept)), nil
}

// Violation increments the violation counter for id, resetting it when
// the previous entry has expired.
func (s *MemoryStore) Violation(_ context.Context, id string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := s.violations[id]
	if now.After(e.expires) {
		e = violationEntry{}
	}
	e.count++
	e.expires = now.Add(ttl)
	s.violations[id] = e
	return e.count, nil
}

// Block marks id as blocked until now+d.
func (s *MemoryStore) Block(_ context.Context, id string, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[id] = s.now().Add(d)
	return nil
}

// BlockedFor returns the remaining block duration for id.
func (s *MemoryStore) BlockedFor(_ context.Context, id string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.blocks[id]
	if !ok {
		return 0, nil
	}
	remaining := until.Sub(s.now())
	if remaining <= 0 {
		delete(s.blocks, id)
		return 0, nil
	}
	return remaining, nil
}
