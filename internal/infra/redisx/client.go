package redisx

import (
	"context"
	"time"

	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const dialTimeout = 2 * time.Second

func New(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})
}

// Ping fails fast at startup instead of on the first request
func Ping(ctx context.Context, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return errs.Wrap(err, "redis ping")
	}
	return nil
}
