package components

import (
	"log/slog"

	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/metrics"
	"commerce-core/internal/usecase"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/queries"
	"commerce-core/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		func(uow shared.UnitOfWork, clk clock.Clock, rec metrics.Recorder, logger *slog.Logger, cfg config.Config) commands.OrderCommands {
			return commands.NewOrderCommands(uow, clk, rec, logger, cfg.Order)
		},
		commands.NewCouponCommands,
		commands.NewBalanceCommands,
		commands.NewCartCommands,
		func(uow shared.UnitOfWork, clk clock.Clock, rec metrics.Recorder, logger *slog.Logger, cfg config.Config) commands.OrderSweeper {
			return commands.NewOrderSweeper(uow, clk, rec, logger, cfg.Sweeper)
		},
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewOrderQueries,
		queries.NewBalanceQueries,
		queries.NewCouponQueries,
		queries.NewProductQueries,
		queries.NewCartQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
