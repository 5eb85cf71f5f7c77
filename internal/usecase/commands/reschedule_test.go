//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"tablebook/internal/domain/booking"
	"tablebook/internal/domain/schedule"
	"tablebook/internal/domain/suggestion"
	"tablebook/internal/infra"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/pkg/config"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/scheduling"
	"tablebook/internal/usecase/shared"
	sharedmock "tablebook/tests/mock/shared"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// ----------------------------------------------------------------------------
// In-memory store doubles
// ----------------------------------------------------------------------------

type memStore struct {
	bookings    map[uuid.UUID]shared.BookingSnapshot
	suggestions map[uuid.UUID]*suggestion.Suggestion

	weekly   []schedule.DayHours
	specials []schedule.SpecialPeriod
	cutoffs  []schedule.CutOffRule
	tables   []booking.Table

	lockedTables []uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		bookings:    make(map[uuid.UUID]shared.BookingSnapshot),
		suggestions: make(map[uuid.UUID]*suggestion.Suggestion),
	}
}

func (m *memStore) BookingByID(_ context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return &b, nil
}

func (m *memStore) BookingsForDate(_ context.Context, restaurantID uuid.UUID, day time.Time) ([]shared.BookingSnapshot, error) {
	var out []shared.BookingSnapshot
	for _, b := range m.bookings {
		if b.RestaurantID == restaurantID && schedule.SameDate(b.StartsAt, day) && b.Status != booking.StatusCancelled {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) Reschedule(_ context.Context, id, tableID uuid.UUID, startsAt, endsAt time.Time) error {
	b, ok := m.bookings[id]
	if !ok || b.Status == booking.StatusCancelled {
		return infra.WrapRepoErr("booking not found or cancelled", nil, infra.KindNotFound)
	}
	b.TableID = &tableID
	b.StartsAt = startsAt
	b.EndsAt = &endsAt
	m.bookings[id] = b
	return nil
}

func (m *memStore) LockTable(_ context.Context, tableID uuid.UUID) error {
	for _, tbl := range m.tables {
		if tbl.ID == tableID {
			m.lockedTables = append(m.lockedTables, tableID)
			return nil
		}
	}
	return infra.WrapRepoErr("table not found", nil, infra.KindNotFound)
}

func (m *memStore) OpeningHours(_ context.Context, _ uuid.UUID) ([]schedule.DayHours, error) {
	return m.weekly, nil
}

func (m *memStore) SpecialPeriods(_ context.Context, _ uuid.UUID) ([]schedule.SpecialPeriod, error) {
	return m.specials, nil
}

func (m *memStore) CutOffRules(_ context.Context, _ uuid.UUID) ([]schedule.CutOffRule, error) {
	return m.cutoffs, nil
}

func (m *memStore) TablesForRestaurant(_ context.Context, _ uuid.UUID) ([]booking.Table, error) {
	return m.tables, nil
}

func (m *memStore) Create(_ context.Context, s *suggestion.Suggestion) error {
	m.suggestions[s.ID()] = s
	return nil
}

func (m *memStore) SuggestionForUpdate(_ context.Context, id uuid.UUID) (*suggestion.Suggestion, error) {
	s, ok := m.suggestions[id]
	if !ok {
		return nil, infra.WrapRepoErr("suggestion not found", nil, infra.KindNotFound)
	}
	return s, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id uuid.UUID, status suggestion.Status, available bool) error {
	s, ok := m.suggestions[id]
	if !ok {
		return infra.WrapRepoErr("suggestion not found", nil, infra.KindNotFound)
	}
	m.suggestions[id] = suggestion.ReconstructSuggestion(
		s.ID(), s.BookingID(), s.RestaurantID(), s.OriginalStart(), s.SuggestedStart(),
		s.TableID(), s.Score(), s.Priority(), s.Reason(), available, status,
		s.CreatedAt(), s.ExpiresAt(),
	)
	return nil
}

func (m *memStore) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range m.suggestions {
		if s.Status() == suggestion.StatusPending && s.ExpiresAt().Before(now) {
			m.suggestions[id] = suggestion.ReconstructSuggestion(
				s.ID(), s.BookingID(), s.RestaurantID(), s.OriginalStart(), s.SuggestedStart(),
				s.TableID(), s.Score(), s.Priority(), s.Reason(), s.Available(),
				suggestion.StatusExpired, s.CreatedAt(), s.ExpiresAt(),
			)
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, s := range m.suggestions {
		if s.Status() == suggestion.StatusExpired && s.ExpiresAt().Before(cutoff) {
			delete(m.suggestions, id)
			n++
		}
	}
	return n, nil
}

type memUoW struct {
	store *memStore
}

func (u *memUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u)
}

func (u *memUoW) Bookings() shared.BookingRepository       { return u.store }
func (u *memUoW) Suggestions() shared.SuggestionRepository { return u.store }

// ----------------------------------------------------------------------------
// Fixture
// ----------------------------------------------------------------------------

type fixture struct {
	store *memStore
	audit *sharedmock.MockAuditSink
	clk   *clock.FixedClock
	cmds  commands.ReschedulingCommands
}

// Friday evening; the restaurant is open 18:00-23:00 every day.
var (
	fixtureNow      = time.Date(2026, 9, 18, 10, 0, 0, 0, time.UTC)
	fixtureOriginal = time.Date(2026, 9, 18, 19, 0, 0, 0, time.UTC)
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	store := newMemStore()
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		store.weekly = append(store.weekly, schedule.DayHours{Weekday: wd, Open: "18:00", Close: "23:00"})
	}

	cfg := config.NewTestConfig()
	clk := clock.NewFixedClock(fixtureNow)
	audit := sharedmock.NewMockAuditSink(ctrl)
	checker := scheduling.NewChecker(store, cfg.Engine)
	generator := scheduling.NewGenerator(store, store, cfg.Engine)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		store: store,
		audit: audit,
		clk:   clk,
		cmds: commands.NewReschedulingCommands(
			&memUoW{store: store}, store, generator, checker, audit, clk, cfg, logger,
		),
	}
}

func (f *fixture) addTable(capacity int, number string) booking.Table {
	tbl := booking.Table{ID: uuid.New(), RestaurantID: uuid.New(), Capacity: capacity, Number: number}
	f.store.tables = append(f.store.tables, tbl)
	return tbl
}

func (f *fixture) addBooking(restaurantID uuid.UUID, tableID *uuid.UUID, starts time.Time, partySize int, status booking.Status) uuid.UUID {
	id := uuid.New()
	f.store.bookings[id] = shared.BookingSnapshot{
		ID:           id,
		RestaurantID: restaurantID,
		TableID:      tableID,
		StartsAt:     starts,
		PartySize:    partySize,
		Status:       status,
		CreatedAt:    fixtureNow,
	}
	return id
}

func (f *fixture) addPendingSuggestion(bookingID *uuid.UUID, restaurantID, tableID uuid.UUID, suggested time.Time, ttl time.Duration) *suggestion.Suggestion {
	s := suggestion.NewSuggestion(
		bookingID, restaurantID, fixtureOriginal, suggested, tableID,
		10, 5, suggestion.ReasonConflict, fixtureNow, ttl,
	)
	f.store.suggestions[s.ID()] = s
	return s
}

func defaultOptions() commands.GenerateOptions {
	return commands.GenerateOptions{
		Search: scheduling.SearchOptions{
			DateRangeDays:   2,
			TimeRangeHours:  2,
			IncludeWeekends: true,
		},
		Scoring: suggestion.DefaultScoringOptions(),
	}
}

// ----------------------------------------------------------------------------
// Generate
// ----------------------------------------------------------------------------

func TestReschedulingCommands_Generate(t *testing.T) {
	ctx := context.Background()
	restaurantID := uuid.New()

	params := func() commands.GenerateParams {
		return commands.GenerateParams{
			RestaurantID:  restaurantID,
			OriginalStart: fixtureOriginal,
			PartySize:     4,
			Reason:        suggestion.ReasonConflict,
		}
	}

	t.Run("ranked, truncated, and persisted", func(t *testing.T) {
		f := newFixture(t)
		f.addTable(4, "1")
		f.addTable(8, "2")
		f.audit.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(nil)

		opts := defaultOptions()
		opts.MaxSuggestions = 3

		got, err := f.cmds.Generate(ctx, params(), opts)
		require.NoError(t, err)
		require.Len(t, got, 3)

		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Score(), got[i].Score(), "suggestions must be sorted by score descending")
		}
		for _, s := range got {
			assert.Equal(t, suggestion.StatusPending, s.Status())
			assert.Equal(t, fixtureNow.Add(24*time.Hour), s.ExpiresAt())
			assert.Contains(t, f.store.suggestions, s.ID(), "suggestion must be persisted")
		}
		// The untouched original slot is the best candidate.
		assert.Equal(t, fixtureOriginal, got[0].SuggestedStart())
	})

	t.Run("generation is idempotent", func(t *testing.T) {
		type key struct {
			Start time.Time
			Table uuid.UUID
			Score float64
		}
		extract := func(list []*suggestion.Suggestion) []key {
			out := make([]key, len(list))
			for i, s := range list {
				out[i] = key{Start: s.SuggestedStart(), Table: s.TableID(), Score: s.Score()}
			}
			return out
		}

		f := newFixture(t)
		f.addTable(4, "1")
		f.addTable(8, "2")
		f.audit.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		first, err := f.cmds.Generate(ctx, params(), defaultOptions())
		require.NoError(t, err)
		second, err := f.cmds.Generate(ctx, params(), defaultOptions())
		require.NoError(t, err)

		if diff := cmp.Diff(extract(first), extract(second)); diff != "" {
			t.Errorf("ranked sets differ between identical runs (-first +second):\n%s", diff)
		}
	})

	t.Run("occupied slots are excluded", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")
		f.addBooking(restaurantID, &tbl.ID, fixtureOriginal, 2, booking.StatusConfirmed)
		f.audit.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		got, err := f.cmds.Generate(ctx, params(), defaultOptions())
		require.NoError(t, err)
		for _, s := range got {
			assert.False(t, schedule.SameDate(s.SuggestedStart(), fixtureOriginal),
				"every Friday slot is blocked by the 19:00 booking and its buffer")
		}
	})

	t.Run("booking reference resolves the slot parameters", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")
		bookingID := f.addBooking(restaurantID, &tbl.ID, fixtureOriginal, 4, booking.StatusConfirmed)
		f.audit.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(nil)

		got, err := f.cmds.Generate(ctx, commands.GenerateParams{
			BookingID: &bookingID,
			Reason:    suggestion.ReasonGuestRequest,
		}, defaultOptions())
		require.NoError(t, err)
		require.NotEmpty(t, got)

		// The moved booking does not conflict with its own slot.
		assert.Equal(t, fixtureOriginal, got[0].SuggestedStart())
		assert.Equal(t, fixtureOriginal, got[0].OriginalStart())
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(t)
		f.addTable(4, "1")
		missing := uuid.New()

		_, err := f.cmds.Generate(ctx, commands.GenerateParams{BookingID: &missing}, defaultOptions())
		assert.ErrorIs(t, err, commands.ErrBookingNotFound)
	})

	t.Run("cancelled booking is not movable", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")
		bookingID := f.addBooking(restaurantID, &tbl.ID, fixtureOriginal, 4, booking.StatusCancelled)

		_, err := f.cmds.Generate(ctx, commands.GenerateParams{BookingID: &bookingID}, defaultOptions())
		assert.ErrorIs(t, err, commands.ErrBookingNotMovable)
	})

	t.Run("no surviving candidate is empty, not an error", func(t *testing.T) {
		f := newFixture(t)
		f.addTable(2, "1") // too small for the party

		got, err := f.cmds.Generate(ctx, params(), defaultOptions())
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Empty(t, f.store.suggestions)
	})

	t.Run("audit failure does not fail generation", func(t *testing.T) {
		f := newFixture(t)
		f.addTable(4, "1")
		f.audit.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(assert.AnError)

		got, err := f.cmds.Generate(ctx, params(), defaultOptions())
		require.NoError(t, err)
		assert.NotEmpty(t, got)
	})
}

// ----------------------------------------------------------------------------
// Accept / Reject
// ----------------------------------------------------------------------------

func TestReschedulingCommands_Accept(t *testing.T) {
	ctx := context.Background()
	restaurantID := uuid.New()
	suggested := time.Date(2026, 9, 19, 19, 0, 0, 0, time.UTC)

	t.Run("accept moves the booking and commits", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")
		bookingID := f.addBooking(restaurantID, nil, fixtureOriginal, 4, booking.StatusConfirmed)
		s := f.addPendingSuggestion(&bookingID, restaurantID, tbl.ID, suggested, 24*time.Hour)
		f.audit.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(nil)

		accepted, err := f.cmds.Accept(ctx, s.ID(), "ops@example.com")
		require.NoError(t, err)
		assert.Equal(t, suggestion.StatusAccepted, accepted.Status())
		assert.Equal(t, suggestion.StatusAccepted, f.store.suggestions[s.ID()].Status())

		moved := f.store.bookings[bookingID]
		assert.Equal(t, suggested, moved.StartsAt)
		require.NotNil(t, moved.TableID)
		assert.Equal(t, tbl.ID, *moved.TableID)
		require.NotNil(t, moved.EndsAt)
		assert.Equal(t, suggested.Add(2*time.Hour), *moved.EndsAt)
	})

	t.Run("hypothetical suggestion accepts without moving anything", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")
		s := f.addPendingSuggestion(nil, restaurantID, tbl.ID, suggested, 24*time.Hour)
		f.audit.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(nil)

		accepted, err := f.cmds.Accept(ctx, s.ID(), "")
		require.NoError(t, err)
		assert.Equal(t, suggestion.StatusAccepted, accepted.Status())
		assert.Empty(t, f.store.bookings)
	})

	t.Run("stale suggestion is rejected when the slot was taken", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")
		bookingID := f.addBooking(restaurantID, nil, fixtureOriginal, 4, booking.StatusConfirmed)
		s := f.addPendingSuggestion(&bookingID, restaurantID, tbl.ID, suggested, 24*time.Hour)

		// Someone else took the table between generation and acceptance.
		f.addBooking(restaurantID, &tbl.ID, suggested.Add(30*time.Minute), 2, booking.StatusConfirmed)

		_, err := f.cmds.Accept(ctx, s.ID(), "ops@example.com")
		assert.ErrorIs(t, err, commands.ErrSlotTaken)

		stored := f.store.suggestions[s.ID()]
		assert.Equal(t, suggestion.StatusRejected, stored.Status())
		assert.False(t, stored.Available())

		// The booking was not moved.
		assert.Equal(t, fixtureOriginal, f.store.bookings[bookingID].StartsAt)
	})

	t.Run("competing accepts for one slot admit exactly one", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")
		firstBooking := f.addBooking(restaurantID, nil, fixtureOriginal, 4, booking.StatusConfirmed)
		secondBooking := f.addBooking(restaurantID, nil, fixtureOriginal, 2, booking.StatusConfirmed)

		winner := f.addPendingSuggestion(&firstBooking, restaurantID, tbl.ID, suggested, 24*time.Hour)
		loser := f.addPendingSuggestion(&secondBooking, restaurantID, tbl.ID, suggested.Add(30*time.Minute), 24*time.Hour)
		f.audit.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.cmds.Accept(ctx, winner.ID(), "ops@example.com")
		require.NoError(t, err)

		_, err = f.cmds.Accept(ctx, loser.ID(), "ops@example.com")
		assert.ErrorIs(t, err, commands.ErrSlotTaken)
		assert.Equal(t, suggestion.StatusRejected, f.store.suggestions[loser.ID()].Status())
		assert.Equal(t, fixtureOriginal, f.store.bookings[secondBooking].StartsAt,
			"the losing booking must stay where it was")

		// Both accepts serialized on the contested table before rechecking.
		assert.Equal(t, []uuid.UUID{tbl.ID, tbl.ID}, f.store.lockedTables)
	})

	t.Run("unknown suggestion", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cmds.Accept(ctx, uuid.New(), "")
		assert.ErrorIs(t, err, commands.ErrSuggestionNotFound)
	})

	t.Run("terminal suggestion refuses", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")
		s := f.addPendingSuggestion(nil, restaurantID, tbl.ID, suggested, 24*time.Hour)
		require.NoError(t, f.store.UpdateStatus(ctx, s.ID(), suggestion.StatusRejected, true))

		_, err := f.cmds.Accept(ctx, s.ID(), "")
		assert.ErrorIs(t, err, commands.ErrSuggestionNotPending)
	})

	t.Run("expired suggestion is marked and refused", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")
		s := f.addPendingSuggestion(nil, restaurantID, tbl.ID, suggested, -time.Hour)

		_, err := f.cmds.Accept(ctx, s.ID(), "")
		assert.ErrorIs(t, err, commands.ErrSuggestionExpired)
		assert.Equal(t, suggestion.StatusExpired, f.store.suggestions[s.ID()].Status())
	})
}

func TestReschedulingCommands_Reject(t *testing.T) {
	ctx := context.Background()
	restaurantID := uuid.New()
	suggested := time.Date(2026, 9, 19, 19, 0, 0, 0, time.UTC)

	t.Run("pending suggestion rejects", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")
		s := f.addPendingSuggestion(nil, restaurantID, tbl.ID, suggested, 24*time.Hour)
		f.audit.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(nil)

		rejected, err := f.cmds.Reject(ctx, s.ID(), "guest")
		require.NoError(t, err)
		assert.Equal(t, suggestion.StatusRejected, rejected.Status())
		assert.Equal(t, suggestion.StatusRejected, f.store.suggestions[s.ID()].Status())
	})

	t.Run("terminal suggestion refuses", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")
		s := f.addPendingSuggestion(nil, restaurantID, tbl.ID, suggested, 24*time.Hour)
		require.NoError(t, f.store.UpdateStatus(ctx, s.ID(), suggestion.StatusAccepted, true))

		_, err := f.cmds.Reject(ctx, s.ID(), "guest")
		assert.ErrorIs(t, err, commands.ErrSuggestionNotPending)
	})

	t.Run("unknown suggestion", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cmds.Reject(ctx, uuid.New(), "guest")
		assert.ErrorIs(t, err, commands.ErrSuggestionNotFound)
	})
}

// ----------------------------------------------------------------------------
// SweepExpired
// ----------------------------------------------------------------------------

func TestReschedulingCommands_SweepExpired(t *testing.T) {
	ctx := context.Background()
	restaurantID := uuid.New()
	suggested := time.Date(2026, 9, 19, 19, 0, 0, 0, time.UTC)

	t.Run("marks overdue pending suggestions and purges old ones", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")

		overdue := f.addPendingSuggestion(nil, restaurantID, tbl.ID, suggested, -time.Hour)
		fresh := f.addPendingSuggestion(nil, restaurantID, tbl.ID, suggested, 24*time.Hour)

		// Long-expired row past the retention window.
		ancient := f.addPendingSuggestion(nil, restaurantID, tbl.ID, suggested, -2000*time.Hour)
		require.NoError(t, f.store.UpdateStatus(ctx, ancient.ID(), suggestion.StatusExpired, true))

		f.audit.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(nil)

		n, err := f.cmds.SweepExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		assert.Equal(t, suggestion.StatusExpired, f.store.suggestions[overdue.ID()].Status())
		assert.Equal(t, suggestion.StatusPending, f.store.suggestions[fresh.ID()].Status())
		assert.NotContains(t, f.store.suggestions, ancient.ID(), "rows past retention are purged")
	})

	t.Run("sweep is idempotent", func(t *testing.T) {
		f := newFixture(t)
		tbl := f.addTable(4, "1")
		f.addPendingSuggestion(nil, restaurantID, tbl.ID, suggested, -time.Hour)
		f.audit.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(nil)

		n, err := f.cmds.SweepExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		// No pending rows remain, so the second pass reports nothing and
		// records no activity.
		n, err = f.cmds.SweepExpired(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
