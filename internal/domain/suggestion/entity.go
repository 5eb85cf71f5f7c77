package suggestion

import (
	"time"

	"tablebook/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrNotPending = errs.New("suggestion is not pending")
	ErrExpired    = errs.New("suggestion has expired")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

func (s Status) Terminal() bool {
	return s != StatusPending
}

// ReasonCode records why a slot had to be vacated.
type ReasonCode string

const (
	ReasonConflict     ReasonCode = "conflict"
	ReasonVenueChange  ReasonCode = "venue_change"
	ReasonGuestRequest ReasonCode = "guest_request"
)

// Suggestion is the engine's only engine-owned mutable entity: a proposed
// alternative slot for a (possibly hypothetical) conflicting booking.
// Transitions: pending -> accepted | rejected | expired, all terminal.
type Suggestion struct {
	id             uuid.UUID
	bookingID      *uuid.UUID
	restaurantID   uuid.UUID
	originalStart  time.Time
	suggestedStart time.Time
	tableID        uuid.UUID
	score          float64
	priority       int
	reason         ReasonCode
	available      bool
	status         Status
	createdAt      time.Time
	expiresAt      time.Time
}

func NewSuggestion(
	bookingID *uuid.UUID,
	restaurantID uuid.UUID,
	originalStart, suggestedStart time.Time,
	tableID uuid.UUID,
	score float64,
	priority int,
	reason ReasonCode,
	now time.Time,
	ttl time.Duration,
) *Suggestion {
	return &Suggestion{
		id:             uuid.New(),
		bookingID:      bookingID,
		restaurantID:   restaurantID,
		originalStart:  originalStart,
		suggestedStart: suggestedStart,
		tableID:        tableID,
		score:          score,
		priority:       priority,
		reason:         reason,
		available:      true, // cached at generation time, advisory only
		status:         StatusPending,
		createdAt:      now,
		expiresAt:      now.Add(ttl),
	}
}

func ReconstructSuggestion(
	id uuid.UUID,
	bookingID *uuid.UUID,
	restaurantID uuid.UUID,
	originalStart, suggestedStart time.Time,
	tableID uuid.UUID,
	score float64,
	priority int,
	reason ReasonCode,
	available bool,
	status Status,
	createdAt, expiresAt time.Time,
) *Suggestion {
	return &Suggestion{
		id:             id,
		bookingID:      bookingID,
		restaurantID:   restaurantID,
		originalStart:  originalStart,
		suggestedStart: suggestedStart,
		tableID:        tableID,
		score:          score,
		priority:       priority,
		reason:         reason,
		available:      available,
		status:         status,
		createdAt:      createdAt,
		expiresAt:      expiresAt,
	}
}

func (s *Suggestion) HasExpired(now time.Time) bool {
	return now.After(s.expiresAt)
}

// Accept moves a pending, unexpired suggestion to accepted. An expired
// pending suggestion is moved to expired and ErrExpired is returned, so the
// sweep never has to race the accept path.
func (s *Suggestion) Accept(now time.Time) error {
	if s.status != StatusPending {
		return ErrNotPending
	}
	if s.HasExpired(now) {
		s.status = StatusExpired
		return ErrExpired
	}
	s.status = StatusAccepted
	return nil
}

// Reject moves a pending suggestion to rejected, caching the availability
// outcome observed at decision time.
func (s *Suggestion) Reject(available bool) error {
	if s.status != StatusPending {
		return ErrNotPending
	}
	s.status = StatusRejected
	s.available = available
	return nil
}

// MarkExpired is the sweep transition; it is a no-op on terminal suggestions.
func (s *Suggestion) MarkExpired() {
	if s.status == StatusPending {
		s.status = StatusExpired
	}
}

func (s *Suggestion) ID() uuid.UUID             { return s.id }
func (s *Suggestion) BookingID() *uuid.UUID     { return s.bookingID }
func (s *Suggestion) RestaurantID() uuid.UUID   { return s.restaurantID }
func (s *Suggestion) OriginalStart() time.Time  { return s.originalStart }
func (s *Suggestion) SuggestedStart() time.Time { return s.suggestedStart }
func (s *Suggestion) TableID() uuid.UUID        { return s.tableID }
func (s *Suggestion) Score() float64            { return s.score }
func (s *Suggestion) Priority() int             { return s.priority }
func (s *Suggestion) Reason() ReasonCode        { return s.reason }
func (s *Suggestion) Available() bool           { return s.available }
func (s *Suggestion) Status() Status            { return s.status }
func (s *Suggestion) CreatedAt() time.Time      { return s.createdAt }
func (s *Suggestion) ExpiresAt() time.Time      { return s.expiresAt }
