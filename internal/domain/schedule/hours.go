package schedule

import (
	"time"
)

// DayHours is the recurring weekly rule for one weekday. Open and Close are
// wall-clock times in "15:04" form.
type DayHours struct {
	Weekday time.Weekday
	Open    string
	Close   string
	Closed  bool
}

// SpecialPeriod overrides the weekly schedule for every date in
// [StartDate, EndDate] (whole calendar days, inclusive). A closed period has
// Closed set; otherwise Open/Close replace the weekly pair.
type SpecialPeriod struct {
	StartDate time.Time
	EndDate   time.Time
	Open      string
	Close     string
	Closed    bool
}

func (p SpecialPeriod) Covers(day time.Time) bool {
	d := dateOf(day)
	return !d.Before(dateOf(p.StartDate)) && !d.After(dateOf(p.EndDate))
}

// Window is the resolved open interval for one date.
type Window struct {
	Open  time.Time
	Close time.Time
}

// HoursResolver answers whether a restaurant is open on a date and with which
// open/close window. Special periods win over weekly hours; a date with no
// rule at all is closed, never "unrestricted".
type HoursResolver struct {
	weekly   map[time.Weekday]DayHours
	specials []SpecialPeriod
}

func NewHoursResolver(weekly []DayHours, specials []SpecialPeriod) *HoursResolver {
	m := make(map[time.Weekday]DayHours, len(weekly))
	for _, h := range weekly {
		m[h.Weekday] = h
	}
	return &HoursResolver{weekly: m, specials: specials}
}

// WindowFor resolves the open window for the given date. The second return is
// false when the restaurant is closed that date, including when no rule
// exists or the stored times are unparseable.
func (r *HoursResolver) WindowFor(day time.Time) (Window, bool) {
	for _, p := range r.specials {
		if !p.Covers(day) {
			continue
		}
		if p.Closed {
			return Window{}, false
		}
		return windowOnDay(day, p.Open, p.Close)
	}

	h, ok := r.weekly[day.Weekday()]
	if !ok || h.Closed {
		return Window{}, false
	}
	return windowOnDay(day, h.Open, h.Close)
}

func windowOnDay(day time.Time, open, close string) (Window, bool) {
	openT, err := time.Parse("15:04", open)
	if err != nil {
		return Window{}, false
	}
	closeT, err := time.Parse("15:04", close)
	if err != nil {
		return Window{}, false
	}
	w := Window{
		Open:  atClock(day, openT.Hour(), openT.Minute()),
		Close: atClock(day, closeT.Hour(), closeT.Minute()),
	}
	if !w.Close.After(w.Open) {
		return Window{}, false
	}
	return w, true
}

func atClock(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
