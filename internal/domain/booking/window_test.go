//go:build unit

package booking_test

import (
	"testing"
	"time"

	"tablebook/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 9, 18, hour, minute, 0, 0, time.UTC)
}

func TestNewTimeWindow(t *testing.T) {
	t.Run("valid window", func(t *testing.T) {
		w, err := booking.NewTimeWindow(at(18, 0), at(20, 0))
		require.NoError(t, err)
		assert.Equal(t, at(18, 0), w.Start())
		assert.Equal(t, at(20, 0), w.End())
		assert.Equal(t, 2*time.Hour, w.Duration())
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := booking.NewTimeWindow(at(20, 0), at(18, 0))
		assert.ErrorIs(t, err, booking.ErrInvalidWindow)
	})

	t.Run("zero-length window", func(t *testing.T) {
		_, err := booking.NewTimeWindow(at(18, 0), at(18, 0))
		assert.ErrorIs(t, err, booking.ErrInvalidWindow)
	})
}

func TestTimeWindow_Overlaps(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     booking.TimeWindow
		expected bool
	}{
		{
			name:     "partial overlap",
			a:        booking.WindowAt(at(18, 0), 2*time.Hour),
			b:        booking.WindowAt(at(19, 0), 2*time.Hour),
			expected: true,
		},
		{
			name:     "containment",
			a:        booking.WindowAt(at(18, 0), 4*time.Hour),
			b:        booking.WindowAt(at(19, 0), time.Hour),
			expected: true,
		},
		{
			name:     "identical windows",
			a:        booking.WindowAt(at(18, 0), 2*time.Hour),
			b:        booking.WindowAt(at(18, 0), 2*time.Hour),
			expected: true,
		},
		{
			name:     "adjacent windows do not overlap",
			a:        booking.WindowAt(at(18, 0), 2*time.Hour),
			b:        booking.WindowAt(at(20, 0), 2*time.Hour),
			expected: false,
		},
		{
			name:     "disjoint windows",
			a:        booking.WindowAt(at(12, 0), time.Hour),
			b:        booking.WindowAt(at(18, 0), time.Hour),
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.a.Overlaps(tc.b))
			// Overlap is symmetric.
			assert.Equal(t, tc.expected, tc.b.Overlaps(tc.a))
		})
	}
}

func TestTimeWindow_Padded(t *testing.T) {
	t.Run("pad expands both sides", func(t *testing.T) {
		w := booking.WindowAt(at(18, 0), 2*time.Hour).Padded(time.Hour)
		assert.Equal(t, at(17, 0), w.Start())
		assert.Equal(t, at(21, 0), w.End())
	})

	t.Run("zero pad is identity", func(t *testing.T) {
		w := booking.WindowAt(at(18, 0), 2*time.Hour)
		assert.Equal(t, w, w.Padded(0))
	})

	t.Run("negative pad is identity", func(t *testing.T) {
		w := booking.WindowAt(at(18, 0), 2*time.Hour)
		assert.Equal(t, w, w.Padded(-time.Hour))
	})

	t.Run("adjacent windows conflict once padded", func(t *testing.T) {
		a := booking.WindowAt(at(18, 0), 2*time.Hour).Padded(30 * time.Minute)
		b := booking.WindowAt(at(20, 0), 2*time.Hour).Padded(30 * time.Minute)
		assert.True(t, a.Overlaps(b))
	})
}
