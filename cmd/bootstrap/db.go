package bootstrap

import (
	"context"
	"log/slog"

	"commerce-core/internal/infra/db"
	"commerce-core/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

// NewDB returns a nil pool for the memory storage driver.
func NewDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		return nil, nil
	}

	ctx := context.Background()
	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			cleanup()
			return nil, err
		}
		logger.Info("database schema applied", "database", cfg.DB.DBName)
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}
