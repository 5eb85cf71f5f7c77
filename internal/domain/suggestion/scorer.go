package suggestion

import (
	"math"
	"time"

	"tablebook/internal/domain/schedule"
)

const (
	baseScore   = 5.0
	MinPriority = 1
	MaxPriority = 5
)

// ScoringOptions toggle the proximity bonuses.
type ScoringOptions struct {
	PreferCloserDates  bool
	PreferOriginalTime bool
}

func DefaultScoringOptions() ScoringOptions {
	return ScoringOptions{PreferCloserDates: true, PreferOriginalTime: true}
}

// Scorer assigns a desirability score to an available candidate slot relative
// to the original slot. Higher is better.
type Scorer struct {
	opts ScoringOptions
}

func NewScorer(opts ScoringOptions) Scorer {
	return Scorer{opts: opts}
}

// Score returns the additive score and the derived priority tier.
//
// Starting from a base of 5 points:
//   - date proximity:  +max(0, 3 - |day delta|)          when enabled
//   - time proximity:  +max(0, 2 - minuteDelta/120)      when enabled
//   - table efficiency: +1 when party/capacity > 0.7
//   - same-day bonus:  +2
//   - weekend penalty: -1 when a weekday booking lands on a weekend
func (s Scorer) Score(originalStart, candidateStart time.Time, partySize, tableCapacity int) (float64, int) {
	score := baseScore

	if s.opts.PreferCloserDates {
		days := math.Abs(daysBetween(originalStart, candidateStart))
		score += math.Max(0, 3-days)
	}

	if s.opts.PreferOriginalTime {
		minutes := math.Abs(float64(minuteOfDay(candidateStart) - minuteOfDay(originalStart)))
		score += math.Max(0, 2-minutes/120)
	}

	if tableCapacity > 0 && float64(partySize)/float64(tableCapacity) > 0.7 {
		score++
	}

	if schedule.SameDate(originalStart, candidateStart) {
		score += 2
	}

	if !schedule.IsWeekend(originalStart) && schedule.IsWeekend(candidateStart) {
		score--
	}

	return score, priorityFor(score)
}

func priorityFor(score float64) int {
	p := int(math.Round(score))
	if p < MinPriority {
		return MinPriority
	}
	if p > MaxPriority {
		return MaxPriority
	}
	return p
}

func daysBetween(a, b time.Time) float64 {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return db.Sub(da).Hours() / 24
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
