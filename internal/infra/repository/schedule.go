package repository

import (
	"context"
	"time"

	"tablebook/internal/domain/schedule"
	"tablebook/internal/infra"
	"tablebook/internal/infra/db"

	"github.com/google/uuid"
)

// ScheduleRepository serves the calendar and cut-off rule stores. All three
// tables are read-only configuration from the engine's point of view.
type ScheduleRepository struct {
	db db.DBTX
}

func NewScheduleRepository(dbtx db.DBTX) *ScheduleRepository {
	return &ScheduleRepository{db: dbtx}
}

func (r *ScheduleRepository) OpeningHours(ctx context.Context, restaurantID uuid.UUID) ([]schedule.DayHours, error) {
	rows, err := r.db.Query(ctx, `
		SELECT weekday, open_time, close_time, is_closed
		FROM opening_hours
		WHERE restaurant_id = $1
		ORDER BY weekday
	`, restaurantID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list opening hours", err)
	}
	defer rows.Close()

	var hours []schedule.DayHours
	for rows.Next() {
		var (
			h       schedule.DayHours
			weekday int
		)
		if err := rows.Scan(&weekday, &h.Open, &h.Close, &h.Closed); err != nil {
			return nil, infra.WrapRepoErr("failed to scan opening hours row", err)
		}
		h.Weekday = time.Weekday(weekday)
		hours = append(hours, h)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read opening hours rows", err)
	}
	return hours, nil
}

func (r *ScheduleRepository) SpecialPeriods(ctx context.Context, restaurantID uuid.UUID) ([]schedule.SpecialPeriod, error) {
	rows, err := r.db.Query(ctx, `
		SELECT start_date, end_date, open_time, close_time, is_closed
		FROM special_periods
		WHERE restaurant_id = $1
		ORDER BY start_date
	`, restaurantID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list special periods", err)
	}
	defer rows.Close()

	var periods []schedule.SpecialPeriod
	for rows.Next() {
		var p schedule.SpecialPeriod
		if err := rows.Scan(&p.StartDate, &p.EndDate, &p.Open, &p.Close, &p.Closed); err != nil {
			return nil, infra.WrapRepoErr("failed to scan special period row", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read special period rows", err)
	}
	return periods, nil
}

func (r *ScheduleRepository) CutOffRules(ctx context.Context, restaurantID uuid.UUID) ([]schedule.CutOffRule, error) {
	rows, err := r.db.Query(ctx, `
		SELECT weekday, lead_hours, enabled
		FROM cut_off_rules
		WHERE restaurant_id = $1
		ORDER BY weekday
	`, restaurantID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list cut-off rules", err)
	}
	defer rows.Close()

	var rules []schedule.CutOffRule
	for rows.Next() {
		var (
			rule    schedule.CutOffRule
			weekday int
		)
		if err := rows.Scan(&weekday, &rule.LeadHours, &rule.Enabled); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cut-off rule row", err)
		}
		rule.Weekday = time.Weekday(weekday)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cut-off rule rows", err)
	}
	return rules, nil
}
