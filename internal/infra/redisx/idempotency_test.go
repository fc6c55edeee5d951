//go:build unit

package redisx_test

import (
	"context"
	"testing"
	"time"

	"commerce-core/internal/infra/redisx"
	"commerce-core/internal/pkg/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ttl time.Duration) (*redisx.IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redisx.New(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, redisx.Ping(context.Background(), rdb))
	return redisx.NewIdempotencyStore(rdb, ttl), mr
}

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("second reserve of a live key is rejected", func(t *testing.T) {
		store, mr := newStore(t, time.Hour)

		ok, err := store.Reserve(ctx, "orders.create:u1", "k1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Reserve(ctx, "orders.create:u1", "k1")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.True(t, mr.Exists("idem:orders.create:u1:k1"))
		assert.Equal(t, time.Hour, mr.TTL("idem:orders.create:u1:k1"))
	})

	t.Run("scopes are independent", func(t *testing.T) {
		store, _ := newStore(t, time.Hour)

		ok, err := store.Reserve(ctx, "orders.create:u1", "k1")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.Reserve(ctx, "orders.create:u2", "k1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("released key can be reserved again", func(t *testing.T) {
		store, _ := newStore(t, time.Hour)

		_, err := store.Reserve(ctx, "s", "k")
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "s", "k"))

		ok, err := store.Reserve(ctx, "s", "k")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("key is free again after the ttl", func(t *testing.T) {
		store, mr := newStore(t, time.Minute)

		_, err := store.Reserve(ctx, "s", "k")
		require.NoError(t, err)
		mr.FastForward(2 * time.Minute)

		ok, err := store.Reserve(ctx, "s", "k")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("zero ttl falls back to the default", func(t *testing.T) {
		store, mr := newStore(t, 0)

		_, err := store.Reserve(ctx, "s", "k")
		require.NoError(t, err)
		assert.Equal(t, redisx.DefaultIdempotencyTTL, mr.TTL("idem:s:k"))
	})

	t.Run("redis down surfaces an error", func(t *testing.T) {
		store, mr := newStore(t, time.Minute)
		mr.Close()

		_, err := store.Reserve(ctx, "s", "k")
		require.Error(t, err)
	})
}

func TestNoopIdempotencyStore(t *testing.T) {
	store := redisx.NoopIdempotencyStore{}
	for i := 0; i < 2; i++ {
		ok, err := store.Reserve(context.Background(), "s", "k")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.NoError(t, store.Release(context.Background(), "s", "k"))
}
