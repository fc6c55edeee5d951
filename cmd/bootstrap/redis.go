package bootstrap

import (
	"context"
	"log/slog"

	"commerce-core/internal/infra/redisx"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/usecase/shared"

	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewIdempotencyStore,
	),
)

// NewIdempotencyStore falls back to a store that admits every key when REDIS_ADDR is empty.
func NewIdempotencyStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.IdempotencyStore, error) {
	if !cfg.Redis.Enabled() {
		logger.Warn("redis is not configured; idempotency keys are not enforced")
		return redisx.NoopIdempotencyStore{}, nil
	}

	rdb := redisx.New(cfg.Redis)
	if err := redisx.Ping(context.Background(), rdb); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return rdb.Close()
		},
	})

	return redisx.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL), nil
}
