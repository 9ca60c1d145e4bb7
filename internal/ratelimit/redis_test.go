package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, "test"), mr
}

func TestRedisStoreCountsEveryHit(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	// A tight burst must count exactly; hits landing in the same
	// microsecond are still distinct entries.
	for i := 1; i <= 100; i++ {
		n, err := store.Hit(ctx, "10.0.0.1", time.Minute)
		require.NoError(t, err)
		require.Equal(t, int64(i), n)
	}
}

func TestRedisStoreIsolatesIdentifiers(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	_, err := store.Hit(ctx, "10.0.0.1", time.Minute)
	require.NoError(t, err)
	n, err := store.Hit(ctx, "10.0.0.2", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestGuardOverRedisRejectsPastLimit(t *testing.T) {
	store, _ := newTestRedisStore(t)
	g := NewGuard(Config{Limit: 60, Window: time.Minute}, store)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		_, err := g.Allow(ctx, "10.0.0.1")
		require.NoError(t, err, "request %d", i+1)
	}

	retryAfter, err := g.Allow(ctx, "10.0.0.1")
	require.ErrorIs(t, err, ErrRateLimited)
	require.Equal(t, time.Minute, retryAfter)
}

func TestGuardOverRedisEscalatesToBlock(t *testing.T) {
	store, mr := newTestRedisStore(t)
	g := NewGuard(Config{Limit: 1, Window: time.Minute, EscalateAfter: 5, BlockFor: time.Hour}, store)
	ctx := context.Background()

	_, err := g.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := g.Allow(ctx, "10.0.0.1")
		require.ErrorIs(t, err, ErrRateLimited)
	}

	retryAfter, err := g.Allow(ctx, "10.0.0.1")
	require.ErrorIs(t, err, ErrBlocked)
	require.Equal(t, time.Hour, retryAfter)

	// Still blocked halfway through, with the remaining time reported.
	mr.FastForward(30 * time.Minute)
	retryAfter, err = g.Allow(ctx, "10.0.0.1")
	require.ErrorIs(t, err, ErrBlocked)
	require.Equal(t, 30*time.Minute, retryAfter)
}

func TestRedisStoreBlockExpires(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Block(ctx, "10.0.0.1", time.Hour))

	remaining, err := store.BlockedFor(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, time.Hour, remaining)

	mr.FastForward(time.Hour + time.Second)

	remaining, err = store.BlockedFor(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.Zero(t, remaining)
}

func TestRedisStoreViolationsExpire(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		n, err := store.Violation(ctx, "10.0.0.1", time.Hour)
		require.NoError(t, err)
		require.Equal(t, int64(i), n)
	}

	// Once the record lapses the counter starts over.
	mr.FastForward(time.Hour + time.Second)
	n, err := store.Violation(ctx, "10.0.0.1", time.Hour)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestRedisStoreUnblockedIdentifier(t *testing.T) {
	store, _ := newTestRedisStore(t)

	remaining, err := store.BlockedFor(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	require.Zero(t, remaining)
}
