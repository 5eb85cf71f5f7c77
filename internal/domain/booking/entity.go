package booking

import (
	"time"

	"tablebook/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidPartySize = errs.New("party size must be positive")
	ErrInvalidStatus    = errs.New("invalid booking status")
	ErrNotReschedulable = errs.New("booking cannot be rescheduled in its current status")
)

// Booking is a reservation owned by a restaurant. The table reference stays
// nil until a table is assigned.
type Booking struct {
	id           uuid.UUID
	restaurantID uuid.UUID
	tableID      *uuid.UUID
	startsAt     time.Time
	endsAt       *time.Time
	partySize    int
	status       Status
	createdAt    time.Time
}

func NewBooking(
	restaurantID uuid.UUID,
	tableID *uuid.UUID,
	startsAt time.Time,
	endsAt *time.Time,
	partySize int,
	now time.Time,
) (*Booking, error) {
	if partySize <= 0 {
		return nil, ErrInvalidPartySize
	}
	return &Booking{
		id:           uuid.New(),
		restaurantID: restaurantID,
		tableID:      tableID,
		startsAt:     startsAt,
		endsAt:       endsAt,
		partySize:    partySize,
		status:       StatusPending,
		createdAt:    now,
	}, nil
}

func ReconstructBooking(
	id, restaurantID uuid.UUID,
	tableID *uuid.UUID,
	startsAt time.Time,
	endsAt *time.Time,
	partySize int,
	status Status,
	createdAt time.Time,
) (*Booking, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return &Booking{
		id:           id,
		restaurantID: restaurantID,
		tableID:      tableID,
		startsAt:     startsAt,
		endsAt:       endsAt,
		partySize:    partySize,
		status:       status,
		createdAt:    createdAt,
	}, nil
}

// EffectiveEnd returns the explicit end time, or start plus the standard
// service duration when none was recorded.
func (b *Booking) EffectiveEnd(serviceDuration time.Duration) time.Time {
	if b.endsAt != nil {
		return *b.endsAt
	}
	return b.startsAt.Add(serviceDuration)
}

// Window is the occupied interval before any turnover padding.
func (b *Booking) Window(serviceDuration time.Duration) TimeWindow {
	return TimeWindow{start: b.startsAt, end: b.EffectiveEnd(serviceDuration)}
}

// MoveTo reassigns the booking to a new table and slot. Only the rescheduling
// commit path calls this.
func (b *Booking) MoveTo(tableID uuid.UUID, startsAt, endsAt time.Time) error {
	if !b.status.Reschedulable() {
		return ErrNotReschedulable
	}
	b.tableID = &tableID
	b.startsAt = startsAt
	b.endsAt = &endsAt
	return nil
}

func (b *Booking) ID() uuid.UUID           { return b.id }
func (b *Booking) RestaurantID() uuid.UUID { return b.restaurantID }
func (b *Booking) TableID() *uuid.UUID     { return b.tableID }
func (b *Booking) StartsAt() time.Time     { return b.startsAt }
func (b *Booking) EndsAt() *time.Time      { return b.endsAt }
func (b *Booking) PartySize() int          { return b.partySize }
func (b *Booking) Status() Status          { return b.status }
func (b *Booking) CreatedAt() time.Time    { return b.createdAt }
