package queries

import (
	"context"
	"time"

	"tablebook/internal/domain/suggestion"
	"tablebook/internal/infra"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrSuggestionNotFound = errs.New("suggestion not found")

// SuggestionView is the read model handed to the hosting application.
type SuggestionView struct {
	ID             uuid.UUID
	BookingID      *uuid.UUID
	RestaurantID   uuid.UUID
	OriginalStart  time.Time
	SuggestedStart time.Time
	TableID        uuid.UUID
	Score          float64
	Priority       int
	Reason         string
	Available      bool
	Status         string
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

type SuggestionQueries interface {
	ByID(ctx context.Context, id uuid.UUID) (*SuggestionView, error)
	ForBooking(ctx context.Context, bookingID uuid.UUID) ([]SuggestionView, error)
}

type suggestionQueriesImpl struct {
	reads shared.SuggestionReads
}

func NewSuggestionQueries(reads shared.SuggestionReads) SuggestionQueries {
	return &suggestionQueriesImpl{reads: reads}
}

func (q *suggestionQueriesImpl) ByID(ctx context.Context, id uuid.UUID) (*SuggestionView, error) {
	s, err := q.reads.SuggestionByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, err
	}
	view := toView(s)
	return &view, nil
}

func (q *suggestionQueriesImpl) ForBooking(ctx context.Context, bookingID uuid.UUID) ([]SuggestionView, error) {
	list, err := q.reads.SuggestionsForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	views := make([]SuggestionView, len(list))
	for i, s := range list {
		views[i] = toView(s)
	}
	return views, nil
}

func toView(s *suggestion.Suggestion) SuggestionView {
	return SuggestionView{
		ID:             s.ID(),
		BookingID:      s.BookingID(),
		RestaurantID:   s.RestaurantID(),
		OriginalStart:  s.OriginalStart(),
		SuggestedStart: s.SuggestedStart(),
		TableID:        s.TableID(),
		Score:          s.Score(),
		Priority:       s.Priority(),
		Reason:         string(s.Reason()),
		Available:      s.Available(),
		Status:         string(s.Status()),
		CreatedAt:      s.CreatedAt(),
		ExpiresAt:      s.ExpiresAt(),
	}
}
