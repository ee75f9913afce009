package ratelimit

import (
	"LinkGate-Backend/internal/domain"
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is a process-local CounterStore for single-instance deployments and tests.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*window
	clock    domain.Clock
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore(clock domain.Clock) *MemoryStore {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &MemoryStore{
		counters: make(map[string]*window),
		clock:    clock,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, length time.Duration) (int64, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.counters[key]
	if !ok || !now.Before(w.resetAt) {
		s.counters[key] = &window{count: 1, resetAt: now.Add(length)}
		return 1, nil
	}
	w.count++
	return w.count, nil
}

func (s *MemoryStore) Peek(_ context.Context, key string) (int64, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.counters[key]
	if !ok || !now.Before(w.resetAt) {
		return 0, nil
	}
	return w.count, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.counters, key)
	s.mu.Unlock()
	return nil
}

// Cleanup removes counters whose window has elapsed and returns how many were removed.
func (s *MemoryStore) Cleanup() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.counters {
		if !now.Before(w.resetAt) {
			delete(s.counters, key)
			removed++
		}
	}
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *MemoryStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}
