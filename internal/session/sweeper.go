// Package session runs the background sweep that removes expired sessions.
// Expired rows are also evicted lazily on access; the sweeper keeps the table
// from accumulating rows for clients that never come back.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the slice of the session repository the sweeper needs.
type Store interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

const (
	leaseKey = "quill:session-sweep:lease"
	leaseTTL = 50 * time.Second
)

// Sweeper periodically deletes expired sessions. With Redis configured, a
// SETNX lease ensures only one replica sweeps per interval; without Redis
// every replica sweeps, which is safe but redundant.
type Sweeper struct {
	store    Store
	redis    *redis.Client
	interval time.Duration
	log      *slog.Logger
}

// NewSweeper creates a sweeper. redis may be nil.
func NewSweeper(store Store, rdb *redis.Client, interval time.Duration, log *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{store: store, redis: rdb, interval: interval, log: log}
}

// Run sweeps until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if !s.acquireLease(ctx) {
		return
	}

	count, err := s.store.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.log.ErrorContext(ctx, "session sweep failed", "error", err)
		return
	}
	if count > 0 {
		s.log.InfoContext(ctx, "expired sessions removed", "count", count)
	}
}

func (s *Sweeper) acquireLease(ctx context.Context) bool {
	if s.redis == nil {
		return true
	}

	ok, err := s.redis.SetNX(ctx, leaseKey, "1", leaseTTL).Result()
	if err != nil {
		// Redis being down should not stop expiry cleanup.
		s.log.WarnContext(ctx, "sweep lease check failed", "error", err)
		return true
	}
	return ok
}
