package queries

import (
	"context"
	"time"

	"tablebook/internal/domain/schedule"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/scheduling"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

// DayAvailability is the per-date view callers render when offering slots:
// the resolved open window and every slot start a table could still take.
type DayAvailability struct {
	Open      bool
	OpenTime  time.Time
	CloseTime time.Time
	FreeSlots []time.Time
}

type AvailabilityQueries interface {
	TableDay(ctx context.Context, restaurantID, tableID uuid.UUID, day time.Time) (*DayAvailability, error)
}

type availabilityQueriesImpl struct {
	schedules       shared.ScheduleReads
	checker         *scheduling.Checker
	serviceDuration time.Duration
	slotIncrement   time.Duration
}

func NewAvailabilityQueries(schedules shared.ScheduleReads, checker *scheduling.Checker, cfg config.EngineConfig) AvailabilityQueries {
	return &availabilityQueriesImpl{
		schedules:       schedules,
		checker:         checker,
		serviceDuration: cfg.ServiceDuration,
		slotIncrement:   cfg.SlotIncrement,
	}
}

func (q *availabilityQueriesImpl) TableDay(
	ctx context.Context,
	restaurantID, tableID uuid.UUID,
	day time.Time,
) (*DayAvailability, error) {
	weekly, err := q.schedules.OpeningHours(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	specials, err := q.schedules.SpecialPeriods(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	window, open := schedule.NewHoursResolver(weekly, specials).WindowFor(day)
	if !open {
		return &DayAvailability{Open: false}, nil
	}

	out := &DayAvailability{Open: true, OpenTime: window.Open, CloseTime: window.Close}
	last := window.Close.Add(-q.serviceDuration)
	for t := window.Open; !t.After(last); t = t.Add(q.slotIncrement) {
		free, err := q.checker.IsTableFree(ctx, restaurantID, tableID, t, 0, nil)
		if err != nil {
			return nil, err
		}
		if free {
			out.FreeSlots = append(out.FreeSlots, t)
		}
	}
	return out, nil
}
