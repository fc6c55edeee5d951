package components

import (
	"log/slog"

	"commerce-core/internal/infra/memory"
	"commerce-core/internal/infra/uow"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewUnitOfWork,
	),
)

// NewUnitOfWork selects the storage backend by STORAGE_DRIVER.
func NewUnitOfWork(cfg config.Config, pool *pgxpool.Pool, logger *slog.Logger) shared.UnitOfWork {
	if cfg.Storage.Driver == config.StorageMemory {
		logger.Warn("using in-memory storage; state is lost on restart")
		return memory.NewUnitOfWork(memory.NewStore(), cfg.Storage.LockWait)
	}
	return uow.NewPostgresUoW(pool, logger)
}
