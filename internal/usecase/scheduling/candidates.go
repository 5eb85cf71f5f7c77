package scheduling

import (
	"context"
	"iter"
	"time"

	"tablebook/internal/domain/booking"
	"tablebook/internal/domain/schedule"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

// SearchOptions bound the candidate enumeration window around the original
// slot.
type SearchOptions struct {
	DateRangeDays   int
	TimeRangeHours  int
	IncludeWeekends bool
	SameDayOnly     bool
}

func DefaultSearchOptions(cfg config.EngineConfig) SearchOptions {
	return SearchOptions{
		DateRangeDays:   cfg.DateRangeDays,
		TimeRangeHours:  cfg.TimeRangeHours,
		IncludeWeekends: true,
	}
}

// Candidate is one (date, time, table) triple. The date is implied by Start.
type Candidate struct {
	Start time.Time
	Table booking.Table
}

// Generator enumerates candidate slots. All store reads happen in Plan; the
// resulting Plan enumerates purely, so iterating it twice with an unchanged
// store yields the same stream.
type Generator struct {
	schedules       shared.ScheduleReads
	tables          shared.TableReads
	serviceDuration time.Duration
	slotIncrement   time.Duration
}

func NewGenerator(schedules shared.ScheduleReads, tables shared.TableReads, cfg config.EngineConfig) *Generator {
	return &Generator{
		schedules:       schedules,
		tables:          tables,
		serviceDuration: cfg.ServiceDuration,
		slotIncrement:   cfg.SlotIncrement,
	}
}

// Plan loads calendar rules, cut-off rules, and tables for the restaurant and
// fixes the enumeration parameters.
func (g *Generator) Plan(
	ctx context.Context,
	restaurantID uuid.UUID,
	originalStart time.Time,
	partySize int,
	now time.Time,
	opts SearchOptions,
) (*Plan, error) {
	weekly, err := g.schedules.OpeningHours(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	specials, err := g.schedules.SpecialPeriods(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	cutoffs, err := g.schedules.CutOffRules(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	all, err := g.tables.TablesForRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	fitting := make([]booking.Table, 0, len(all))
	for _, t := range all {
		if t.Fits(partySize) {
			fitting = append(fitting, t)
		}
	}

	return &Plan{
		resolver:        schedule.NewHoursResolver(weekly, specials),
		cutoff:          schedule.NewCutoffPolicy(cutoffs),
		tables:          fitting,
		originalStart:   originalStart,
		now:             now,
		opts:            opts,
		serviceDuration: g.serviceDuration,
		slotIncrement:   g.slotIncrement,
	}, nil
}

// Plan is a finite, restartable candidate stream: every call to All
// recomputes the enumeration from the captured rules, holding no iteration
// state between invocations.
type Plan struct {
	resolver        *schedule.HoursResolver
	cutoff          *schedule.CutoffPolicy
	tables          []booking.Table
	originalStart   time.Time
	now             time.Time
	opts            SearchOptions
	serviceDuration time.Duration
	slotIncrement   time.Duration
}

func (p *Plan) All() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		if len(p.tables) == 0 {
			return
		}

		days := p.opts.DateRangeDays
		if p.opts.SameDayOnly {
			days = 0
		}
		timeRange := time.Duration(p.opts.TimeRangeHours) * time.Hour

		for offset := 0; offset <= days; offset++ {
			day := p.originalStart.AddDate(0, 0, offset)
			if !p.opts.IncludeWeekends && schedule.IsWeekend(day) {
				continue
			}
			window, open := p.resolver.WindowFor(day)
			if !open {
				continue
			}

			// The original clock time carried onto this day anchors the
			// +/- timeRange search band.
			anchor := day
			lower := latest(window.Open, anchor.Add(-timeRange))
			// Subtracting the service duration from close keeps every
			// candidate from running past closing.
			upper := earliest(window.Close.Add(-p.serviceDuration), anchor.Add(timeRange))

			for t := alignUp(lower, window.Open, p.slotIncrement); !t.After(upper); t = t.Add(p.slotIncrement) {
				if !p.cutoff.Allows(p.now, t) {
					continue
				}
				for _, tbl := range p.tables {
					if !yield(Candidate{Start: t, Table: tbl}) {
						return
					}
				}
			}
		}
	}
}

// alignUp snaps t up to the slot grid anchored at the open time.
func alignUp(t, anchor time.Time, step time.Duration) time.Time {
	if !t.After(anchor) {
		return anchor
	}
	d := t.Sub(anchor)
	n := d / step
	if d%step != 0 {
		n++
	}
	return anchor.Add(n * step)
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
