package shared

import (
	"context"
	"time"

	"tablebook/internal/domain/suggestion"

	"github.com/google/uuid"
)

// UnitOfWork runs fn inside one transactional boundary. The accept path's
// availability recheck and booking mutation must share a single Within call
// so the check-then-act window is closed at the data store.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Bookings() BookingRepository
	Suggestions() SuggestionRepository
}

type BookingRepository interface {
	BookingReads
	// LockTable serializes every accept touching the same table for the
	// remainder of the transaction. Row locks on suggestions alone cannot do
	// this: two accepts on different suggestions never contend there.
	LockTable(ctx context.Context, tableID uuid.UUID) error
	// Reschedule moves the booking to a new table and slot.
	Reschedule(ctx context.Context, id, tableID uuid.UUID, startsAt, endsAt time.Time) error
}

type SuggestionRepository interface {
	Create(ctx context.Context, s *suggestion.Suggestion) error
	// SuggestionForUpdate locks the row for the remainder of the transaction.
	SuggestionForUpdate(ctx context.Context, id uuid.UUID) (*suggestion.Suggestion, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status suggestion.Status, available bool) error
	// MarkExpired transitions every pending suggestion past its expiry and
	// returns how many rows changed.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	// DeleteExpiredBefore purges terminal suggestions older than cutoff.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
