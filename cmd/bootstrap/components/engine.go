package components

import (
	"tablebook/internal/pkg/clock"
	"tablebook/internal/usecase/commands"
	"tablebook/internal/usecase/queries"
	"tablebook/internal/usecase/scheduling"

	"go.uber.org/fx"
)

var EngineModule = fx.Module("engine",
	engineBaseOption,
	engineCommandsModule,
	engineQueriesModule,
)

var engineBaseOption = fx.Provide(
	clock.NewSystemClock,
	scheduling.NewChecker,
	scheduling.NewGenerator,
)

var engineCommandsModule = fx.Module("engine/commands",
	fx.Provide(
		commands.NewReschedulingCommands,
	),
)

var engineQueriesModule = fx.Module("engine/queries",
	fx.Provide(
		queries.NewSuggestionQueries,
		queries.NewAvailabilityQueries,
	),
)
