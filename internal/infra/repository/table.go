package repository

import (
	"context"

	"tablebook/internal/domain/booking"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"

	"github.com/google/uuid"
)

type TableRepository struct {
	db db.DBTX
}

func NewTableRepository(dbtx db.DBTX) *TableRepository {
	return &TableRepository{db: dbtx}
}

func (r *TableRepository) TablesForRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]booking.Table, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, restaurant_id, capacity, table_number
		FROM restaurant_tables
		WHERE restaurant_id = $1
		ORDER BY table_number
	`, restaurantID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list tables", err)
	}
	defer rows.Close()

	var tables []booking.Table
	for rows.Next() {
		var t booking.Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.Capacity, &t.Number); err != nil {
			return nil, infra.WrapRepoErr("failed to scan table row", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read table rows", err)
	}
	return tables, nil
}
