package booking

import (
	"time"

	"tablebook/internal/pkg/errs"
)

var ErrInvalidWindow = errs.New("window end must be after start")

// TimeWindow is a half-open interval [start, end). A booking ending exactly
// when another starts does not occupy the same instant, so adjacent windows
// never overlap.
type TimeWindow struct {
	start time.Time
	end   time.Time
}

func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !end.After(start) {
		return TimeWindow{}, ErrInvalidWindow
	}
	return TimeWindow{start: start, end: end}, nil
}

// WindowAt builds the window occupied by a service starting at start.
func WindowAt(start time.Time, duration time.Duration) TimeWindow {
	return TimeWindow{start: start, end: start.Add(duration)}
}

func (w TimeWindow) Start() time.Time        { return w.start }
func (w TimeWindow) End() time.Time          { return w.end }
func (w TimeWindow) Duration() time.Duration { return w.end.Sub(w.start) }

// Overlaps reports whether the two half-open intervals share any instant.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.start.Before(other.end) && other.start.Before(w.end)
}

// Padded expands the window by pad on both sides. The turnover buffer is
// applied this way to both the requested and the occupied window before the
// overlap test.
func (w TimeWindow) Padded(pad time.Duration) TimeWindow {
	if pad <= 0 {
		return w
	}
	return TimeWindow{start: w.start.Add(-pad), end: w.end.Add(pad)}
}
