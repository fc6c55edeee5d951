package redisx

import (
	"context"
	"fmt"
	"time"

	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
)

const (
	KeyIdempotency = "idem:%s:%s"

	DefaultIdempotencyTTL = 24 * time.Hour
)

type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

var _ shared.IdempotencyStore = (*IdempotencyStore)(nil)

func (s *IdempotencyStore) Reserve(ctx context.Context, scope, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, fmt.Sprintf(KeyIdempotency, scope, key), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, errs.Wrapf(err, "reserve idempotency key %s", key)
	}
	return ok, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, scope, key string) error {
	if err := s.rdb.Del(ctx, fmt.Sprintf(KeyIdempotency, scope, key)).Err(); err != nil {
		return errs.Wrapf(err, "release idempotency key %s", key)
	}
	return nil
}

// NoopIdempotencyStore accepts every key. Used when Redis is not configured.
type NoopIdempotencyStore struct{}

var _ shared.IdempotencyStore = NoopIdempotencyStore{}

func (NoopIdempotencyStore) Reserve(context.Context, string, string) (bool, error) { return true, nil }

func (NoopIdempotencyStore) Release(context.Context, string, string) error { return nil }
