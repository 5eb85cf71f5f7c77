package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tablebook/internal/domain/booking"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

func (r *BookingRepository) BookingByID(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, restaurant_id, table_id, starts_at, ends_at, party_size, status, created_at
		FROM bookings
		WHERE id = $1
	`, id)

	snap, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	return snap, nil
}

func (r *BookingRepository) BookingsForDate(
	ctx context.Context,
	restaurantID uuid.UUID,
	day time.Time,
) ([]shared.BookingSnapshot, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := r.db.Query(ctx, `
		SELECT id, restaurant_id, table_id, starts_at, ends_at, party_size, status, created_at
		FROM bookings
		WHERE restaurant_id = $1
		  AND starts_at >= $2
		  AND starts_at < $3
		  AND status <> 'cancelled'
		ORDER BY starts_at
	`, restaurantID, dayStart, dayEnd)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings for date", err)
	}
	defer rows.Close()

	var result []shared.BookingSnapshot
	for rows.Next() {
		snap, err := scanBooking(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking row", err)
		}
		result = append(result, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read booking rows", err)
	}
	return result, nil
}

// LockTable takes a row lock on the table so concurrent transactions
// rechecking availability for the same table queue up behind each other.
func (r *BookingRepository) LockTable(ctx context.Context, tableID uuid.UUID) error {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		SELECT id
		FROM restaurant_tables
		WHERE id = $1
		FOR UPDATE
	`, tableID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return infra.WrapRepoErr("table not found", err, infra.KindNotFound)
		}
		return infra.WrapRepoErr("failed to lock table", err)
	}
	return nil
}

func (r *BookingRepository) Reschedule(
	ctx context.Context,
	id, tableID uuid.UUID,
	startsAt, endsAt time.Time,
) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET table_id = $2, starts_at = $3, ends_at = $4
		WHERE id = $1 AND status <> 'cancelled'
	`, id, tableID, startsAt, endsAt)
	if err != nil {
		return infra.WrapRepoErr("failed to reschedule booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found or cancelled", nil, infra.KindNotFound)
	}
	return nil
}

func scanBooking(row pgx.Row) (*shared.BookingSnapshot, error) {
	var (
		snap    shared.BookingSnapshot
		tableID uuid.NullUUID
		endsAt  sql.NullTime
		status  string
	)
	if err := row.Scan(
		&snap.ID,
		&snap.RestaurantID,
		&tableID,
		&snap.StartsAt,
		&endsAt,
		&snap.PartySize,
		&status,
		&snap.CreatedAt,
	); err != nil {
		return nil, err
	}
	if tableID.Valid {
		id := tableID.UUID
		snap.TableID = &id
	}
	if endsAt.Valid {
		t := endsAt.Time
		snap.EndsAt = &t
	}
	snap.Status = booking.Status(status)
	return &snap, nil
}
