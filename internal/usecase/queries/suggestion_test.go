//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"tablebook/internal/domain/suggestion"
	"tablebook/internal/infra"
	"tablebook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSuggestionReads struct {
	byID map[uuid.UUID]*suggestion.Suggestion
}

func (s *stubSuggestionReads) SuggestionByID(_ context.Context, id uuid.UUID) (*suggestion.Suggestion, error) {
	if v, ok := s.byID[id]; ok {
		return v, nil
	}
	return nil, infra.WrapRepoErr("suggestion not found", nil, infra.KindNotFound)
}

func (s *stubSuggestionReads) SuggestionsForBooking(_ context.Context, bookingID uuid.UUID) ([]*suggestion.Suggestion, error) {
	var out []*suggestion.Suggestion
	for _, v := range s.byID {
		if v.BookingID() != nil && *v.BookingID() == bookingID {
			out = append(out, v)
		}
	}
	return out, nil
}

func TestSuggestionQueries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 18, 14, 0, 0, 0, time.UTC)
	bookingID := uuid.New()

	s := suggestion.NewSuggestion(
		&bookingID, uuid.New(),
		now.Add(24*time.Hour), now.Add(26*time.Hour),
		uuid.New(), 9.5, 5, suggestion.ReasonConflict, now, 24*time.Hour,
	)
	reads := &stubSuggestionReads{byID: map[uuid.UUID]*suggestion.Suggestion{s.ID(): s}}
	q := queries.NewSuggestionQueries(reads)

	t.Run("by ID maps the entity to the view", func(t *testing.T) {
		view, err := q.ByID(ctx, s.ID())
		require.NoError(t, err)
		assert.Equal(t, s.ID(), view.ID)
		require.NotNil(t, view.BookingID)
		assert.Equal(t, bookingID, *view.BookingID)
		assert.Equal(t, 9.5, view.Score)
		assert.Equal(t, "pending", view.Status)
		assert.Equal(t, "conflict", view.Reason)
	})

	t.Run("unknown ID", func(t *testing.T) {
		_, err := q.ByID(ctx, uuid.New())
		assert.ErrorIs(t, err, queries.ErrSuggestionNotFound)
	})

	t.Run("for booking", func(t *testing.T) {
		views, err := q.ForBooking(ctx, bookingID)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, s.ID(), views[0].ID)
	})
}
