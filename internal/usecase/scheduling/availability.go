package scheduling

import (
	"context"
	"time"

	"tablebook/internal/domain/booking"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

// Checker decides whether a table is free for a requested window. Every other
// component delegates to it; the buffered half-open overlap test lives here
// and in booking.TimeWindow only.
type Checker struct {
	bookings        shared.BookingReads
	serviceDuration time.Duration
	turnoverBuffer  time.Duration
}

func NewChecker(bookings shared.BookingReads, cfg config.EngineConfig) *Checker {
	return &Checker{
		bookings:        bookings,
		serviceDuration: cfg.ServiceDuration,
		turnoverBuffer:  cfg.TurnoverBuffer,
	}
}

// IsTableFree reports whether tableID can seat a new booking starting at
// start. A zero duration means the standard service duration. ignore, when
// non-nil, names a booking excluded from the conflict set — the booking being
// moved does not conflict with its own slot.
func (c *Checker) IsTableFree(
	ctx context.Context,
	restaurantID, tableID uuid.UUID,
	start time.Time,
	duration time.Duration,
	ignore *uuid.UUID,
) (bool, error) {
	existing, err := c.bookings.BookingsForDate(ctx, restaurantID, start)
	if err != nil {
		return false, err
	}
	return c.FreeAmong(existing, tableID, start, duration, ignore), nil
}

// FreeAmong is the pure form of IsTableFree over an already-loaded booking
// set. The accept path uses it inside the commit transaction so the recheck
// and the mutation observe the same rows.
func (c *Checker) FreeAmong(
	existing []shared.BookingSnapshot,
	tableID uuid.UUID,
	start time.Time,
	duration time.Duration,
	ignore *uuid.UUID,
) bool {
	if duration <= 0 {
		duration = c.serviceDuration
	}
	// The buffer is split between the two windows, so two bookings on the
	// same table need one full buffer of separation, not two.
	pad := c.turnoverBuffer / 2
	requested := booking.WindowAt(start, duration).Padded(pad)

	for _, b := range existing {
		if !b.Status.Occupying() {
			continue
		}
		if b.TableID == nil || *b.TableID != tableID {
			continue
		}
		if ignore != nil && b.ID == *ignore {
			continue
		}
		occupied := booking.WindowAt(b.StartsAt, b.EffectiveEnd(c.serviceDuration).Sub(b.StartsAt)).Padded(pad)
		if requested.Overlaps(occupied) {
			return false
		}
	}
	return true
}

func (c *Checker) ServiceDuration() time.Duration {
	return c.serviceDuration
}
