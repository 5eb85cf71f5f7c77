package components

import (
	"tablebook/internal/infra/db"
	repo_impl "tablebook/internal/infra/repository"
	"tablebook/internal/infra/uow"
	"tablebook/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		fx.Annotate(
			repo_impl.NewBookingRepository,
			fx.As(new(shared.BookingReads)),
		),
		fx.Annotate(
			repo_impl.NewTableRepository,
			fx.As(new(shared.TableReads)),
		),
		fx.Annotate(
			repo_impl.NewScheduleRepository,
			fx.As(new(shared.ScheduleReads)),
		),
		fx.Annotate(
			repo_impl.NewSuggestionRepository,
			fx.As(new(shared.SuggestionReads)),
		),
		fx.Annotate(
			repo_impl.NewActivityLogRepository,
			fx.As(new(shared.AuditSink)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
