// Package ratelimit implements fixed-window rate limiting over a pluggable counter store.
package ratelimit

import (
	"context"
	"time"
)

// CounterStore keeps per-key fixed-window counters.
//
// Incr must be atomic per key: when no counter exists for key or its window has
// elapsed, the counter restarts at 1 with a fresh window of the given length;
// otherwise it is incremented. The returned value is the count after the increment.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	// Peek returns the current count without modifying it; 0 when absent or elapsed.
	Peek(ctx context.Context, key string) (int64, error)
	// Reset drops the counter for key.
	Reset(ctx context.Context, key string) error
}
