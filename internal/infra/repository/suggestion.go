package repository

import (
	"context"
	"errors"
	"time"

	"tablebook/internal/domain/suggestion"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const suggestionColumns = `
	id, booking_id, restaurant_id, original_start, suggested_start,
	table_id, score, priority, reason, is_available, status,
	created_at, expires_at`

type SuggestionRepository struct {
	db db.DBTX
}

func NewSuggestionRepository(dbtx db.DBTX) *SuggestionRepository {
	return &SuggestionRepository{db: dbtx}
}

func (r *SuggestionRepository) Create(ctx context.Context, s *suggestion.Suggestion) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rescheduling_suggestions (`+suggestionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		s.ID(),
		nullableUUID(s.BookingID()),
		s.RestaurantID(),
		s.OriginalStart(),
		s.SuggestedStart(),
		s.TableID(),
		s.Score(),
		s.Priority(),
		string(s.Reason()),
		s.Available(),
		string(s.Status()),
		s.CreatedAt(),
		s.ExpiresAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create suggestion", err)
	}
	return nil
}

func (r *SuggestionRepository) SuggestionByID(ctx context.Context, id uuid.UUID) (*suggestion.Suggestion, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+suggestionColumns+`
		FROM rescheduling_suggestions
		WHERE id = $1
	`, id)
	return scanSuggestion(row)
}

// SuggestionForUpdate locks the row so the accept path's recheck and commit
// cannot interleave with a concurrent accept on the same suggestion.
func (r *SuggestionRepository) SuggestionForUpdate(ctx context.Context, id uuid.UUID) (*suggestion.Suggestion, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+suggestionColumns+`
		FROM rescheduling_suggestions
		WHERE id = $1
		FOR UPDATE
	`, id)
	return scanSuggestion(row)
}

func (r *SuggestionRepository) SuggestionsForBooking(ctx context.Context, bookingID uuid.UUID) ([]*suggestion.Suggestion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+suggestionColumns+`
		FROM rescheduling_suggestions
		WHERE booking_id = $1
		ORDER BY score DESC, created_at
	`, bookingID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list suggestions for booking", err)
	}
	defer rows.Close()

	var result []*suggestion.Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read suggestion rows", err)
	}
	return result, nil
}

func (r *SuggestionRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status suggestion.Status,
	available bool,
) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE rescheduling_suggestions
		SET status = $2, is_available = $3
		WHERE id = $1
	`, id, string(status), available)
	if err != nil {
		return infra.WrapRepoErr("failed to update suggestion status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("suggestion not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *SuggestionRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE rescheduling_suggestions
		SET status = 'expired'
		WHERE status = 'pending' AND expires_at < $1
	`, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to mark expired suggestions", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SuggestionRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM rescheduling_suggestions
		WHERE status = 'expired' AND expires_at < $1
	`, cutoff)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired suggestions", err)
	}
	return tag.RowsAffected(), nil
}

func scanSuggestion(row pgx.Row) (*suggestion.Suggestion, error) {
	var (
		id             uuid.UUID
		bookingID      uuid.NullUUID
		restaurantID   uuid.UUID
		originalStart  time.Time
		suggestedStart time.Time
		tableID        uuid.UUID
		score          float64
		priority       int
		reason         string
		available      bool
		status         string
		createdAt      time.Time
		expiresAt      time.Time
	)
	if err := row.Scan(
		&id, &bookingID, &restaurantID, &originalStart, &suggestedStart,
		&tableID, &score, &priority, &reason, &available, &status,
		&createdAt, &expiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("suggestion not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan suggestion row", err)
	}

	var bid *uuid.UUID
	if bookingID.Valid {
		v := bookingID.UUID
		bid = &v
	}
	return suggestion.ReconstructSuggestion(
		id, bid, restaurantID, originalStart, suggestedStart,
		tableID, score, priority, suggestion.ReasonCode(reason),
		available, suggestion.Status(status), createdAt, expiresAt,
	), nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
