package commands

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"tablebook/internal/domain/suggestion"
	"tablebook/internal/infra"
	"tablebook/internal/pkg/clock"
	"tablebook/internal/pkg/config"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/usecase/scheduling"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound      = errs.New("booking not found")
	ErrBookingNotMovable    = errs.New("booking cannot be rescheduled")
	ErrSuggestionNotFound   = errs.New("suggestion not found")
	ErrSuggestionNotPending = errs.New("suggestion is not pending")
	ErrSuggestionExpired    = errs.New("suggestion has expired")
	// ErrSlotTaken is the expected business outcome of a stale accept: the
	// suggested slot was taken between generation and acceptance.
	ErrSlotTaken = errs.New("suggested slot is no longer available")

	ErrStoreFailure = errs.New("store operation failed")
)

// GenerateParams identify the slot being vacated. BookingID is optional: a
// nil booking means a hypothetical conflict, and accept then records the
// decision without moving anything.
type GenerateParams struct {
	BookingID     *uuid.UUID
	RestaurantID  uuid.UUID
	OriginalStart time.Time
	PartySize     int
	Reason        suggestion.ReasonCode
}

type GenerateOptions struct {
	Search  scheduling.SearchOptions
	Scoring suggestion.ScoringOptions
	// MaxSuggestions truncates the ranked list; zero means the configured
	// default.
	MaxSuggestions int
}

type ReschedulingCommands interface {
	// Generate enumerates, scores, ranks, and persists alternative slots.
	// An empty result is not an error: it means no candidate survived the
	// calendar, cut-off, capacity, and availability filters.
	Generate(ctx context.Context, params GenerateParams, opts GenerateOptions) ([]*suggestion.Suggestion, error)
	Accept(ctx context.Context, suggestionID uuid.UUID, actor string) (*suggestion.Suggestion, error)
	Reject(ctx context.Context, suggestionID uuid.UUID, actor string) (*suggestion.Suggestion, error)
	// SweepExpired marks every pending suggestion past its expiry and purges
	// terminal rows older than the retention window. Idempotent.
	SweepExpired(ctx context.Context) (int64, error)
}

type reschedulingCommandsImpl struct {
	uow       shared.UnitOfWork
	bookings  shared.BookingReads
	generator *scheduling.Generator
	checker   *scheduling.Checker
	audit     shared.AuditSink
	clock     clock.Clock
	cfg       config.EngineConfig
	retention time.Duration
	logger    *slog.Logger
}

func NewReschedulingCommands(
	uow shared.UnitOfWork,
	bookings shared.BookingReads,
	generator *scheduling.Generator,
	checker *scheduling.Checker,
	audit shared.AuditSink,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) ReschedulingCommands {
	return &reschedulingCommandsImpl{
		uow:       uow,
		bookings:  bookings,
		generator: generator,
		checker:   checker,
		audit:     audit,
		clock:     clk,
		cfg:       cfg.Engine,
		retention: cfg.Sweep.Retention,
		logger:    logger,
	}
}

func (r *reschedulingCommandsImpl) Generate(
	ctx context.Context,
	params GenerateParams,
	opts GenerateOptions,
) ([]*suggestion.Suggestion, error) {
	now := r.clock.Now()

	params, err := r.resolveParams(ctx, params)
	if err != nil {
		return nil, err
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = r.cfg.MaxSuggestions
	}

	plan, err := r.generator.Plan(ctx, params.RestaurantID, params.OriginalStart, params.PartySize, now, opts.Search)
	if err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	scorer := suggestion.NewScorer(opts.Scoring)
	var ranked []*suggestion.Suggestion
	for cand := range plan.All() {
		free, err := r.checker.IsTableFree(ctx, params.RestaurantID, cand.Table.ID, cand.Start, 0, params.BookingID)
		if err != nil {
			return nil, errs.Mark(err, ErrStoreFailure)
		}
		if !free {
			continue
		}
		score, priority := scorer.Score(params.OriginalStart, cand.Start, params.PartySize, cand.Table.Capacity)
		ranked = append(ranked, suggestion.NewSuggestion(
			params.BookingID,
			params.RestaurantID,
			params.OriginalStart,
			cand.Start,
			cand.Table.ID,
			score,
			priority,
			params.Reason,
			now,
			r.cfg.SuggestionTTL,
		))
	}

	// Stable sort: equal scores keep generation order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})
	if len(ranked) > opts.MaxSuggestions {
		ranked = ranked[:opts.MaxSuggestions]
	}
	if len(ranked) == 0 {
		return []*suggestion.Suggestion{}, nil
	}

	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		for _, s := range ranked {
			if err := tx.Suggestions().Create(ctx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errs.Mark(err, ErrStoreFailure)
	}

	r.recordActivity(ctx, shared.AuditEvent{
		Kind:         shared.EventSuggestionsGenerated,
		RestaurantID: params.RestaurantID,
		BookingID:    params.BookingID,
		OccurredAt:   now,
		Details: map[string]any{
			"count":  len(ranked),
			"reason": string(params.Reason),
		},
	})

	return ranked, nil
}

// resolveParams fills slot parameters from the referenced booking when one is
// named.
func (r *reschedulingCommandsImpl) resolveParams(ctx context.Context, params GenerateParams) (GenerateParams, error) {
	if params.BookingID == nil {
		return params, nil
	}
	b, err := r.bookings.BookingByID(ctx, *params.BookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return params, ErrBookingNotFound
		}
		return params, errs.Mark(err, ErrStoreFailure)
	}
	if !b.Status.Reschedulable() {
		return params, ErrBookingNotMovable
	}
	params.RestaurantID = b.RestaurantID
	params.OriginalStart = b.StartsAt
	params.PartySize = b.PartySize
	return params, nil
}

// Accept revalidates availability inside the commit transaction. The cached
// availability flag from generation time is advisory only; time has passed,
// so the slot is rechecked against the rows the mutation will see.
func (r *reschedulingCommandsImpl) Accept(
	ctx context.Context,
	suggestionID uuid.UUID,
	actor string,
) (*suggestion.Suggestion, error) {
	now := r.clock.Now()
	var accepted *suggestion.Suggestion

	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, err := tx.Suggestions().SuggestionForUpdate(ctx, suggestionID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrSuggestionNotFound
			}
			return errs.Mark(err, ErrStoreFailure)
		}

		if err := s.Accept(now); err != nil {
			switch {
			case errors.Is(err, suggestion.ErrExpired):
				if updErr := tx.Suggestions().UpdateStatus(ctx, s.ID(), suggestion.StatusExpired, s.Available()); updErr != nil {
					return errs.Mark(updErr, ErrStoreFailure)
				}
				return ErrSuggestionExpired
			default:
				return ErrSuggestionNotPending
			}
		}

		// Serialize on the target table before rereading bookings. Without
		// this, two accepts on different suggestions for the same slot both
		// see the pre-accept booking set and both commit.
		if err := tx.Bookings().LockTable(ctx, s.TableID()); err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}

		existing, err := tx.Bookings().BookingsForDate(ctx, s.RestaurantID(), s.SuggestedStart())
		if err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		if !r.checker.FreeAmong(existing, s.TableID(), s.SuggestedStart(), 0, s.BookingID()) {
			if updErr := tx.Suggestions().UpdateStatus(ctx, s.ID(), suggestion.StatusRejected, false); updErr != nil {
				return errs.Mark(updErr, ErrStoreFailure)
			}
			return ErrSlotTaken
		}

		if s.BookingID() != nil {
			end := s.SuggestedStart().Add(r.cfg.ServiceDuration)
			if err := tx.Bookings().Reschedule(ctx, *s.BookingID(), s.TableID(), s.SuggestedStart(), end); err != nil {
				return errs.Mark(err, ErrStoreFailure)
			}
		}

		if err := tx.Suggestions().UpdateStatus(ctx, s.ID(), suggestion.StatusAccepted, true); err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		accepted = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.recordActivity(ctx, shared.AuditEvent{
		Kind:         shared.EventSuggestionAccepted,
		RestaurantID: accepted.RestaurantID(),
		BookingID:    accepted.BookingID(),
		SuggestionID: ptr(accepted.ID()),
		Actor:        actor,
		OccurredAt:   now,
		Details: map[string]any{
			"suggested_start": accepted.SuggestedStart(),
			"table_id":        accepted.TableID(),
		},
	})

	return accepted, nil
}

func (r *reschedulingCommandsImpl) Reject(
	ctx context.Context,
	suggestionID uuid.UUID,
	actor string,
) (*suggestion.Suggestion, error) {
	now := r.clock.Now()
	var rejected *suggestion.Suggestion

	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, err := tx.Suggestions().SuggestionForUpdate(ctx, suggestionID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrSuggestionNotFound
			}
			return errs.Mark(err, ErrStoreFailure)
		}
		if err := s.Reject(s.Available()); err != nil {
			return ErrSuggestionNotPending
		}
		if err := tx.Suggestions().UpdateStatus(ctx, s.ID(), suggestion.StatusRejected, s.Available()); err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		rejected = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.recordActivity(ctx, shared.AuditEvent{
		Kind:         shared.EventSuggestionRejected,
		RestaurantID: rejected.RestaurantID(),
		BookingID:    rejected.BookingID(),
		SuggestionID: ptr(rejected.ID()),
		Actor:        actor,
		OccurredAt:   now,
	})

	return rejected, nil
}

func (r *reschedulingCommandsImpl) SweepExpired(ctx context.Context) (int64, error) {
	now := r.clock.Now()
	var expired int64

	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Suggestions().MarkExpired(ctx, now)
		if err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		expired = n

		if _, err := tx.Suggestions().DeleteExpiredBefore(ctx, now.Add(-r.retention)); err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		r.recordActivity(ctx, shared.AuditEvent{
			Kind:       shared.EventSuggestionsExpired,
			OccurredAt: now,
			Details:    map[string]any{"count": expired},
		})
	}

	return expired, nil
}

// recordActivity is fire-and-forget: a sink failure must not undo the
// operation it describes.
func (r *reschedulingCommandsImpl) recordActivity(ctx context.Context, event shared.AuditEvent) {
	if r.audit == nil {
		return
	}
	if err := r.audit.RecordActivity(ctx, event); err != nil {
		r.logger.Warn("failed to record activity", "kind", event.Kind, "error", err.Error())
	}
}

func ptr[T any](v T) *T {
	return &v
}
