package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Limiter allows at most limit calls per key within each fixed window.
type Limiter struct {
	store     CounterStore
	namespace string
	limit     int
	window    time.Duration
	log       *zap.Logger
}

// New creates a limiter. Distinct use sites must use distinct namespaces.
func New(store CounterStore, namespace string, limit int, window time.Duration, log *zap.Logger) *Limiter {
	return &Limiter{
		store:     store,
		namespace: namespace,
		limit:     limit,
		window:    window,
		log:       log.With(zap.String("limiter", namespace)),
	}
}

// Allow counts the call and reports whether it is within the limit.
// Store failures are logged and the call is allowed.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	count, err := l.store.Incr(ctx, l.namespace+":"+key, l.window)
	if err != nil {
		l.log.Warn("rate limit store unavailable, allowing request", zap.String("key", key), zap.Error(err))
		return true
	}
	if count > int64(l.limit) {
		l.log.Debug("rate limit exceeded", zap.String("key", key), zap.Int64("count", count), zap.Int("limit", l.limit))
		return false
	}
	return true
}

// Remaining returns how many calls key may still make in its current window.
func (l *Limiter) Remaining(ctx context.Context, key string) int {
	count, err := l.store.Peek(ctx, l.namespace+":"+key)
	if err != nil {
		l.log.Warn("rate limit store unavailable", zap.String("key", key), zap.Error(err))
		return l.limit
	}
	if remaining := l.limit - int(count); remaining > 0 {
		return remaining
	}
	return 0
}

// Reset clears the counter for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, l.namespace+":"+key)
}

func (l *Limiter) Window() time.Duration {
	return l.window
}
