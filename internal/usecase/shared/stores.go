package shared

import (
	"context"
	"time"

	"tablebook/internal/domain/booking"
	"tablebook/internal/domain/schedule"
	"tablebook/internal/domain/suggestion"

	"github.com/google/uuid"
)

// Minimal snapshot of a booking row for availability checks and commits.
type BookingSnapshot struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	TableID      *uuid.UUID
	StartsAt     time.Time
	EndsAt       *time.Time
	PartySize    int
	Status       booking.Status
	CreatedAt    time.Time
}

// EffectiveEnd mirrors booking.Booking: explicit end or start plus the
// standard service duration.
func (b BookingSnapshot) EffectiveEnd(serviceDuration time.Duration) time.Time {
	if b.EndsAt != nil {
		return *b.EndsAt
	}
	return b.StartsAt.Add(serviceDuration)
}

type BookingReads interface {
	BookingByID(ctx context.Context, id uuid.UUID) (*BookingSnapshot, error)
	// BookingsForDate returns every non-cancelled booking of the restaurant
	// whose start falls on the given calendar day.
	BookingsForDate(ctx context.Context, restaurantID uuid.UUID, day time.Time) ([]BookingSnapshot, error)
}

type TableReads interface {
	TablesForRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]booking.Table, error)
}

type ScheduleReads interface {
	OpeningHours(ctx context.Context, restaurantID uuid.UUID) ([]schedule.DayHours, error)
	SpecialPeriods(ctx context.Context, restaurantID uuid.UUID) ([]schedule.SpecialPeriod, error)
	CutOffRules(ctx context.Context, restaurantID uuid.UUID) ([]schedule.CutOffRule, error)
}

type SuggestionReads interface {
	SuggestionByID(ctx context.Context, id uuid.UUID) (*suggestion.Suggestion, error)
	SuggestionsForBooking(ctx context.Context, bookingID uuid.UUID) ([]*suggestion.Suggestion, error)
}

// AuditEvent is handed to the audit/notification sink. Delivery is
// fire-and-forget; a sink failure never rolls back the operation it records.
type AuditEvent struct {
	Kind         string
	RestaurantID uuid.UUID
	BookingID    *uuid.UUID
	SuggestionID *uuid.UUID
	Actor        string
	OccurredAt   time.Time
	Details      map[string]any
}

const (
	EventSuggestionsGenerated = "suggestions_generated"
	EventSuggestionAccepted   = "suggestion_accepted"
	EventSuggestionRejected   = "suggestion_rejected"
	EventSuggestionsExpired   = "suggestions_expired"
)

type AuditSink interface {
	RecordActivity(ctx context.Context, event AuditEvent) error
}
