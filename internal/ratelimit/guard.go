// Package ratelimit implements the abuse guard consulted before
// authentication: a sliding-window request counter per client
// identifier, with escalation to a time-boxed block after repeated
// violations. Counter state lives behind the Store interface so a
// single process can run on the in-memory store while multi-process
// deployments share a Redis store.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimited is returned when the identifier exceeded the
// sliding-window limit. Transient; the client may retry after the
// window moves on.
var ErrRateLimited = errors.New("rate limited")

// ErrBlocked is returned when the identifier has been escalated to a
// time-boxed block after repeated violations.
var ErrBlocked = errors.New("blocked")

// Store tracks hits, violations and blocks for client identifiers.
// Implementations must serialize Hit so concurrent requests never lose
// an increment.
type Store interface {
	// Hit records one request for id and returns the total number of
	// requests in the trailing window, including this one.
	Hit(ctx context.Context, id string, window time.Duration) (int64, error)
	// Violation records one limit violation for id and returns the
	// violation total. Records expire after ttl.
	Violation(ctx context.Context, id string, ttl time.Duration) (int64, error)
	// Block marks id as blocked for the given duration.
	Block(ctx context.Context, id string, d time.Duration) error
	// BlockedFor returns the remaining block duration for id, zero when
	// id is not blocked.
	BlockedFor(ctx context.Context, id string) (time.Duration, error)
}

// Config holds the guard thresholds.
type Config struct {
	Limit         int           // max requests per window
	Window        time.Duration // sliding window length
	EscalateAfter int           // violations before a block is imposed
	BlockFor      time.Duration // block duration once escalated
}

// Guard applies Config against a Store.
type Guard struct {
	cfg   Config
	store Store
}

// NewGuard returns a Guard over the given store. Zero config fields
// fall back to 60 requests per 60s, blocking for an hour after 5
// violations.
func NewGuard(cfg Config, store Store) *Guard {
	if cfg.Limit <= 0 {
		cfg.Limit = 60
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.EscalateAfter <= 0 {
		cfg.EscalateAfter = 5
	}
	if cfg.BlockFor <= 0 {
		cfg.BlockFor = time.Hour
	}
	return &Guard{cfg: cfg, store: store}
}

// Allow decides whether a request from id may proceed. It returns
// ErrBlocked for escalated identifiers, ErrRateLimited when the window
// limit is exceeded, and nil otherwise. retryAfter tells the caller how
// long to advertise in a Retry-After header. A store failure is
// returned as-is so the caller can choose to fail open.
func (g *Guard) Allow(ctx context.Context, id string) (retryAfter time.Duration, err error) {
	remaining, err := g.store.BlockedFor(ctx, id)
	if err != nil {
		return 0, err
	}
	if remaining > 0 {
		return remaining, ErrBlocked
	}

	n, err := g.store.Hit(ctx, id, g.cfg.Window)
	if err != nil {
		return 0, err
	}
	if n <= int64(g.cfg.Limit) {
		return 0, nil
	}

	// Violations are tracked over the block duration, so a burst of
	// abuse keeps counting toward escalation even across windows.
	v, err := g.store.Violation(ctx, id, g.cfg.BlockFor)
	if err == nil && v >= int64(g.cfg.EscalateAfter) {
		if blockErr := g.store.Block(ctx, id, g.cfg.BlockFor); blockErr == nil {
			return g.cfg.BlockFor, ErrBlocked
		}
	}
	return g.cfg.Window, ErrRateLimited
}
