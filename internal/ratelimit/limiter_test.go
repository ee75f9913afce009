package ratelimit

import (
	"LinkGate-Backend/internal/domain"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestLimiter_AllowsUpToLimitWithinWindow(t *testing.T) {
	clock := domain.NewMockClock(testStart)
	l := New(NewMemoryStore(clock), "test", 3, time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "caller"), "call %d should be allowed", i+1)
	}
	for i := 0; i < 5; i++ {
		assert.False(t, l.Allow(ctx, "caller"), "call %d should be denied", i+4)
	}
}

func TestLimiter_WindowResetsFromFirstCall(t *testing.T) {
	clock := domain.NewMockClock(testStart)
	l := New(NewMemoryStore(clock), "test", 2, time.Minute, zap.NewNop())
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "caller"))
	clock.Advance(30 * time.Second)
	require.True(t, l.Allow(ctx, "caller"))
	require.False(t, l.Allow(ctx, "caller"))

	// still inside the window opened by the first call
	clock.Advance(29 * time.Second)
	assert.False(t, l.Allow(ctx, "caller"))

	clock.Advance(time.Second)
	assert.True(t, l.Allow(ctx, "caller"))
	assert.True(t, l.Allow(ctx, "caller"))
	assert.False(t, l.Allow(ctx, "caller"))
}

func TestLimiter_KeysAndNamespacesAreIndependent(t *testing.T) {
	store := NewMemoryStore(domain.NewMockClock(testStart))
	a := New(store, "a", 1, time.Minute, zap.NewNop())
	b := New(store, "b", 1, time.Minute, zap.NewNop())
	ctx := context.Background()

	assert.True(t, a.Allow(ctx, "k1"))
	assert.False(t, a.Allow(ctx, "k1"))
	assert.True(t, a.Allow(ctx, "k2"))
	assert.True(t, b.Allow(ctx, "k1"))
}

func TestLimiter_DeniedCallsStillCount(t *testing.T) {
	clock := domain.NewMockClock(testStart)
	l := New(NewMemoryStore(clock), "test", 2, time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		l.Allow(ctx, "caller")
	}
	assert.Equal(t, 0, l.Remaining(ctx, "caller"))

	clock.Advance(time.Minute)
	assert.Equal(t, 2, l.Remaining(ctx, "caller"))
}

func TestLimiter_Remaining(t *testing.T) {
	l := New(NewMemoryStore(domain.NewMockClock(testStart)), "test", 5, time.Minute, zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, 5, l.Remaining(ctx, "caller"))
	l.Allow(ctx, "caller")
	l.Allow(ctx, "caller")
	assert.Equal(t, 3, l.Remaining(ctx, "caller"))

	require.NoError(t, l.Reset(ctx, "caller"))
	assert.Equal(t, 5, l.Remaining(ctx, "caller"))
}

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection refused")
}

func (failingStore) Peek(context.Context, string) (int64, error) {
	return 0, errors.New("connection refused")
}

func (failingStore) Reset(context.Context, string) error {
	return errors.New("connection refused")
}

func TestLimiter_FailsOpenOnStoreError(t *testing.T) {
	l := New(failingStore{}, "test", 1, time.Minute, zap.NewNop())
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "caller"))
	assert.True(t, l.Allow(ctx, "caller"))
	assert.Equal(t, 1, l.Remaining(ctx, "caller"))
}

func TestLimiter_ConcurrentCallsAreCountedExactly(t *testing.T) {
	l := New(NewMemoryStore(domain.NewMockClock(testStart)), "test", 100, time.Minute, zap.NewNop())
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 250; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(ctx, "caller") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed)
}

func TestMemoryStore_Cleanup(t *testing.T) {
	clock := domain.NewMockClock(testStart)
	store := NewMemoryStore(clock)
	ctx := context.Background()

	_, _ = store.Incr(ctx, "short", time.Second)
	_, _ = store.Incr(ctx, "long", time.Hour)
	require.Equal(t, 2, store.Len())

	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, store.Cleanup())
	assert.Equal(t, 1, store.Len())

	count, err := store.Peek(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
