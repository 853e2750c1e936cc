// Package sweeper reclaims seat holds whose TTL has lapsed. It is the
// backstop for every path that abandons a lock without releasing it:
// closed browsers, crashed checkouts, dropped webhooks.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sejinpark/cinetick/internal/domain"
)

const leaseKey = "sweeper:lease"

// ReservationExpirer mirrors the reservation manager's stale-reservation
// sweep, run alongside the seat-level one.
type ReservationExpirer interface {
	ExpireStaleReservations(ctx context.Context, now time.Time) (int, error)
}

// Sweeper periodically returns expired LOCKED seats to AVAILABLE and expires
// reservations whose screening has started. Sweeping rests entirely on the
// durable lock_expires_at column, so it survives process restarts. A Redis
// lease keeps multiple instances from sweeping the same tick; since every
// transition is conditional, a duplicate sweep is wasted work, not a hazard.
type Sweeper struct {
	logger     *slog.Logger
	ledger     domain.SeatLedger
	expirer    ReservationExpirer
	redis      redis.UniversalClient
	interval   time.Duration
	instanceID string
}

func New(
	logger *slog.Logger,
	ledger domain.SeatLedger,
	expirer ReservationExpirer,
	redisClient redis.UniversalClient,
	interval time.Duration) *Sweeper {

	return &Sweeper{
		logger:     logger,
		ledger:     ledger,
		expirer:    expirer,
		redis:      redisClient,
		interval:   interval,
		instanceID: uuid.NewString(),
	}
}

// Run ticks until the context is cancelled. Errors are logged and the next
// tick retries; a missed sweep only delays reclamation by one interval.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("starting lock expiry sweeper", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping lock expiry sweeper")
			return
		case <-ticker.C:
			if !s.acquireLease(ctx) {
				continue
			}

			_, _, err := s.RunOnce(ctx, time.Now())
			if err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single sweep pass. It is also the entry point for the
// administrative cleanup endpoint, which bypasses the lease.
func (s *Sweeper) RunOnce(ctx context.Context, now time.Time) (sweptSeats, expiredReservations int, err error) {
	swept, err := s.ledger.SweepExpired(ctx, now)
	if err != nil {
		return 0, 0, err
	}

	if len(swept) > 0 {
		s.logger.Info("reclaimed expired seat locks", "count", len(swept), "seats", swept)
	}

	expired, err := s.expirer.ExpireStaleReservations(ctx, now)
	if err != nil {
		return len(swept), 0, err
	}

	return len(swept), expired, nil
}

func (s *Sweeper) acquireLease(ctx context.Context) bool {
	if s.redis == nil {
		return true
	}

	ok, err := s.redis.SetNX(ctx, leaseKey, s.instanceID, s.interval).Result()
	if err != nil {
		// Sweeping without the lease is safe, only redundant.
		s.logger.Warn("failed to acquire sweep lease, sweeping anyway", "error", err)
		return true
	}

	return ok
}
