package repository

import (
	"context"
	"encoding/json"

	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

// ActivityLogRepository is the store-backed audit sink. It always runs
// outside the caller's transaction: audit failures must never roll back the
// operation they describe.
type ActivityLogRepository struct {
	db db.DBTX
}

func NewActivityLogRepository(dbtx db.DBTX) *ActivityLogRepository {
	return &ActivityLogRepository{db: dbtx}
}

func (r *ActivityLogRepository) RecordActivity(ctx context.Context, event shared.AuditEvent) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return infra.WrapRepoErr("failed to encode activity details", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO activity_log (id, kind, restaurant_id, booking_id, suggestion_id, actor, occurred_at, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		uuid.New(),
		event.Kind,
		nullableUUIDValue(event.RestaurantID),
		nullableUUID(event.BookingID),
		nullableUUID(event.SuggestionID),
		event.Actor,
		event.OccurredAt,
		details,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to record activity", err)
	}
	return nil
}

func nullableUUIDValue(id uuid.UUID) uuid.NullUUID {
	if id == uuid.Nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: id, Valid: true}
}
