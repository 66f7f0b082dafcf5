package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oiueei/oiueei/internal/clock"
	"github.com/oiueei/oiueei/internal/domain"
)

type SweepRepository interface {
	// ListStalePending returns codes of PENDING bookings created before
	// cutoff, oldest first, bounded by limit.
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// BookingExpirer applies the expiry transition for one booking.
type BookingExpirer interface {
	ExpireBooking(ctx context.Context, code string) (domain.Booking, error)
}

// Sweeper closes out abandoned pending bookings. It is triggered by an
// external scheduler and safe to run concurrently with live traffic:
// the expiry transition is conditional on the booking still being
// PENDING at write time, so a decision made in the instant before the
// sweep is never clobbered.
type Sweeper struct {
	repo   SweepRepository
	engine BookingExpirer
	clock  clock.Clock

	expiry time.Duration
	limit  int
}

const defaultSweepLimit = 500

func NewSweeper(repo SweepRepository, engine BookingExpirer, clk clock.Clock, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		repo:   repo,
		engine: engine,
		clock:  clk,
		expiry: defaultBookingExpiry,
		limit:  defaultSweepLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SweeperOption func(*Sweeper)

// WithSweepExpiry overrides the pending-booking expiry window.
func WithSweepExpiry(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithSweepLimit bounds how many bookings one sweep may transition.
func WithSweepLimit(n int) SweeperOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.limit = n
		}
	}
}

// Sweep expires stale pending bookings and returns how many it
// transitioned. A single bad record never aborts the batch: per-booking
// failures are logged and skipped. Running twice in succession
// transitions nothing the second time.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.expiry)

	codes, err := s.repo.ListStalePending(ctx, cutoff, s.limit)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, code := range codes {
		if _, err := s.engine.ExpireBooking(ctx, code); err != nil {
			// Decided or deleted between selection and transition; the
			// interactive path won.
			if errors.Is(err, domain.ErrBookingDecided) || errors.Is(err, domain.ErrBookingNotFound) {
				continue
			}
			slog.Error("sweep: failed to expire booking",
				slog.String("booking", code),
				slog.Any("error", err),
			)
			continue
		}
		count++
	}
	return count, nil
}
