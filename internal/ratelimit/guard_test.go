package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock drives a MemoryStore through a controlled timeline.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.now
	return store, clock
}

func TestGuardAllowsUpToLimit(t *testing.T) {
	store, _ := newClockedStore()
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

func TestGuardWindowSlides(t *testing.T) {
	store, clock := newClockedStore()
	g := NewGuard(Config{Limit: 3, Window: time.Minute}, store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := g.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
	}
	_, err := g.Allow(ctx, "10.0.0.1")
	require.ErrorIs(t, err, ErrRateLimited)

	// Once the earlier hits fall out of the trailing window the next
	// request goes through again.
	clock.advance(61 * time.Second)
	_, err = g.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
}

func TestGuardIdentifiersIsolated(t *testing.T) {
	store, _ := newClockedStore()
	g := NewGuard(Config{Limit: 1, Window: time.Minute}, store)
	ctx := context.Background()

	_, err := g.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	_, err = g.Allow(ctx, "10.0.0.1")
	require.ErrorIs(t, err, ErrRateLimited)

	_, err = g.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
}

func TestGuardEscalatesToBlock(t *testing.T) {
	store, clock := newClockedStore()
	g := NewGuard(Config{Limit: 1, Window: time.Minute, EscalateAfter: 5, BlockFor: time.Hour}, store)
	ctx := context.Background()

	_, err := g.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)

	// Four violations stay at rate-limited.
	for i := 0; i < 4; i++ {
		_, err := g.Allow(ctx, "10.0.0.1")
		require.ErrorIs(t, err, ErrRateLimited)
	}

	// The fifth violation trips the block.
	retryAfter, err := g.Allow(ctx, "10.0.0.1")
	require.ErrorIs(t, err, ErrBlocked)
	require.Equal(t, time.Hour, retryAfter)

	// Blocked identifiers stay blocked even after the window moves on,
	// and the advertised retry shrinks as time passes.
	clock.advance(30 * time.Minute)
	retryAfter, err = g.Allow(ctx, "10.0.0.1")
	require.ErrorIs(t, err, ErrBlocked)
	require.Equal(t, 30*time.Minute, retryAfter)

	// After the block lapses the identifier starts clean.
	clock.advance(31 * time.Minute)
	_, err = g.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
}

func TestGuardDefaults(t *testing.T) {
	g := NewGuard(Config{}, NewMemoryStore())
	require.Equal(t, 60, g.cfg.Limit)
	require.Equal(t, time.Minute, g.cfg.Window)
	require.Equal(t, 5, g.cfg.EscalateAfter)
	require.Equal(t, time.Hour, g.cfg.BlockFor)
}

type failingStore struct {
	err error
}

func (s *failingStore) Hit(context.Context, string, time.Duration) (int64, error) {
	return 0, s.err
}
func (s *failingStore) Violation(context.Context, string, time.Duration) (int64, error) {
	return 0, s.err
}
func (s *failingStore) Block(context.Context, string, time.Duration) error { return s.err }
func (s *failingStore) BlockedFor(context.Context, string) (time.Duration, error) {
	return 0, s.err
}

func TestGuardSurfacesStoreErrors(t *testing.T) {
	cause := errors.New("redis down")
	g := NewGuard(Config{}, &failingStore{err: cause})

	_, err := g.Allow(context.Background(), "10.0.0.1")
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrRateLimited)
	require.NotErrorIs(t, err, ErrBlocked)
}
