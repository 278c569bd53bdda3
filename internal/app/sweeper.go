package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/leaatimberini/sucht-backend-sub000/internal/clock"
)

type SweepRepository interface {
	// ListExpiredUnconfirmed returns ids of valid, unconfirmed tickets whose
	// event asked for confirmations before the cutoff.
	ListExpiredUnconfirmed(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// Invalidator is the single invalidate transition the sweeper drives; it is
// the same entry point administrative cancel uses, so the state-machine
// guards live in one place.
type Invalidator interface {
	Invalidate(ctx context.Context, ticketID string) (bool, error)
}

const (
	defaultSweepInterval = time.Minute
	defaultConfirmGrace  = time.Hour
	defaultSweepBatch    = 100
)

// Sweeper periodically reverses tickets that were never confirmed within the
// grace period, returning their capacity to the pool.
type Sweeper struct {
	repo     SweepRepository
	tickets  Invalidator
	clock    clock.Clock
	log      zerolog.Logger
	interval time.Duration
	grace    time.Duration
	batch    int
}

func NewSweeper(repo SweepRepository, tickets Invalidator, clk clock.Clock, log zerolog.Logger, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		repo:     repo,
		tickets:  tickets,
		clock:    clk,
		log:      log.With().Str("component", "sweeper").Logger(),
		interval: defaultSweepInterval,
		grace:    defaultConfirmGrace,
		batch:    defaultSweepBatch,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SweeperOption func(*Sweeper)

func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithConfirmGrace(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.grace = d
		}
	}
}

// Run sweeps on a fixed period until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Dur("grace", s.grace).Msg("expiry sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.log.Error().Err(err).Msg("sweep pass failed")
			}
		}
	}
}

// SweepOnce runs a single pass and returns how many tickets it invalidated.
// It is safe to run concurrently with new reservations: each invalidation is
// its own guarded transaction and a re-sweep of the same ticket is a no-op.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.grace)

	ids, err := s.repo.ListExpiredUnconfirmed(ctx, cutoff, s.batch)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, id := range ids {
		changed, err := s.tickets.Invalidate(ctx, id)
		if err != nil {
			// Keep going: one bad row must not stall reclamation of the rest.
			s.log.Error().Err(err).Str("ticket_id", id).Msg("failed to invalidate expired ticket")
			continue
		}
		if changed {
			swept++
		}
	}
	if swept > 0 {
		s.log.Info().Int("swept", swept).Time("cutoff", cutoff).Msg("expired tickets invalidated")
	}
	return swept, nil
}
