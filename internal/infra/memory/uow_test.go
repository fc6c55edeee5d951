//go:build unit

package memory_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"commerce-core/internal/domain/cart"
	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/event"
	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/domain/order"
	"commerce-core/internal/infra/memory"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/shared"
	"commerce-core/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var errBoom = errors.New("boom")

func seedVariant(t *testing.T, store *memory.Store, stock int64) *inventory.Variant {
	t.Helper()
	p := builder.NewProductBuilder().BuildDomain()
	v := builder.NewVariantBuilder().ForProduct(p).With(func(b *builder.VariantBuilder) { b.Stock = stock }).MustBuild()
	store.AddProduct(p, v)
	return v
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	ctx := context.Background()

	t.Run("committed writes become visible", func(t *testing.T) {
		store := memory.NewStore()
		uow := memory.NewUnitOfWork(store, time.Second)
		v := seedVariant(t, store, 10)

		err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			locked, err := tx.Variants().FindByIDForUpdate(ctx, v.ID())
			if err != nil {
				return err
			}
			if err := locked.Reserve(3, builder.BaseTime); err != nil {
				return err
			}
			return tx.Variants().Save(ctx, locked)
		})
		require.NoError(t, err)

		got, ok := store.Variant(v.ID())
		require.True(t, ok)
		assert.Equal(t, int64(3), got.ReservedStock())
	})

	t.Run("error discards every staged write", func(t *testing.T) {
		store := memory.NewStore()
		uow := memory.NewUnitOfWork(store, time.Second)
		v := seedVariant(t, store, 10)
		o := builder.NewOrderBuilder().MustBuild()

		err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			locked, err := tx.Variants().FindByIDForUpdate(ctx, v.ID())
			if err != nil {
				return err
			}
			if err := locked.Reserve(3, builder.BaseTime); err != nil {
				return err
			}
			if err := tx.Variants().Save(ctx, locked); err != nil {
				return err
			}
			if err := tx.Orders().Create(ctx, o); err != nil {
				return err
			}
			return errBoom
		})
		require.ErrorIs(t, err, errBoom)

		got, _ := store.Variant(v.ID())
		assert.Equal(t, int64(0), got.ReservedStock())
		_, found := store.Order(o.ID())
		assert.False(t, found)
	})

	t.Run("staged writes are visible inside the same transaction", func(t *testing.T) {
		store := memory.NewStore()
		uow := memory.NewUnitOfWork(store, time.Second)
		o := builder.NewOrderBuilder().MustBuild()

		err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			require.NoError(t, tx.Orders().Create(ctx, o))
			got, err := tx.Orders().FindByIDForUpdate(ctx, o.ID())
			require.NoError(t, err)
			assert.Equal(t, order.StatusPending, got.Status())
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("not found maps to domain error", func(t *testing.T) {
		uow := memory.NewUnitOfWork(memory.NewStore(), time.Second)
		err := uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
			_, err := tx.Orders().FindByID(ctx, builder.NewOrderBuilder().MustBuild().ID())
			return err
		})
		require.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestUnitOfWork_CartItems(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uow := memory.NewUnitOfWork(store, time.Second)
	userID := uuid.New()
	it, err := cart.NewItem(userID, uuid.New(), 2, builder.BaseTime)
	require.NoError(t, err)

	require.NoError(t, uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.CartItems().Create(ctx, it)
	}))
	require.Len(t, store.CartItems(userID), 1)

	t.Run("second item for the same option is rejected", func(t *testing.T) {
		dup, err := cart.NewItem(userID, it.VariantID(), 1, builder.BaseTime)
		require.NoError(t, err)
		err = uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.CartItems().Create(ctx, dup)
		})
		require.Error(t, err)
		assert.Len(t, store.CartItems(userID), 1)
	})

	t.Run("staged delete hides the item until rollback", func(t *testing.T) {
		err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			require.NoError(t, tx.CartItems().Delete(ctx, it.ID()))
			_, err := tx.CartItems().FindByUserAndVariant(ctx, userID, it.VariantID())
			require.ErrorIs(t, err, cart.ErrCartItemNotFound)
			listed, err := tx.CartItems().ListByUser(ctx, userID)
			require.NoError(t, err)
			assert.Empty(t, listed)
			return errBoom
		})
		require.ErrorIs(t, err, errBoom)
		assert.Len(t, store.CartItems(userID), 1)
	})

	t.Run("committed delete removes the item", func(t *testing.T) {
		require.NoError(t, uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.CartItems().Delete(ctx, it.ID())
		}))
		assert.Empty(t, store.CartItems(userID))

		err := uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
			_, err := tx.CartItems().FindByID(ctx, it.ID())
			return err
		})
		require.ErrorIs(t, err, cart.ErrCartItemNotFound)
	})
}

func TestUnitOfWork_ReadOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uow := memory.NewUnitOfWork(store, time.Second)
	v := seedVariant(t, store, 10)

	err := uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		got, err := tx.Variants().FindByID(ctx, v.ID())
		require.NoError(t, err)
		return tx.Variants().Save(ctx, got)
	})
	require.ErrorIs(t, err, shared.ErrReadOnlyTransaction)
}

func TestUnitOfWork_RowLocks(t *testing.T) {
	ctx := context.Background()

	t.Run("concurrent reservations never oversell", func(t *testing.T) {
		store := memory.NewStore()
		uow := memory.NewUnitOfWork(store, 5*time.Second)
		v := seedVariant(t, store, 10)

		var ok, rejected atomic.Int32
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < 25; i++ {
			g.Go(func() error {
				err := uow.Within(gctx, func(ctx context.Context, tx shared.Tx) error {
					locked, err := tx.Variants().FindByIDForUpdate(ctx, v.ID())
					if err != nil {
						return err
					}
					if err := locked.Reserve(1, builder.BaseTime); err != nil {
						return err
					}
					return tx.Variants().Save(ctx, locked)
				})
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, inventory.ErrInsufficientStock):
					rejected.Add(1)
				default:
					return err
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		assert.Equal(t, int32(10), ok.Load())
		assert.Equal(t, int32(15), rejected.Load())
		got, _ := store.Variant(v.ID())
		assert.Equal(t, int64(10), got.ReservedStock())
	})

	t.Run("waiting past the lock timeout fails", func(t *testing.T) {
		store := memory.NewStore()
		uow := memory.NewUnitOfWork(store, 50*time.Millisecond)
		v := seedVariant(t, store, 10)

		locked := make(chan struct{})
		done := make(chan struct{})
		go func() {
			_ = uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
				_, err := tx.Variants().FindByIDForUpdate(ctx, v.ID())
				close(locked)
				<-done
				return err
			})
		}()
		<-locked

		err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			_, err := tx.Variants().FindByIDForUpdate(ctx, v.ID())
			return err
		})
		close(done)
		require.Error(t, err)
		assert.True(t, errs.Is(err, memory.ErrLockTimeout))
	})

	t.Run("locks are reentrant within a transaction", func(t *testing.T) {
		store := memory.NewStore()
		uow := memory.NewUnitOfWork(store, 50*time.Millisecond)
		v := seedVariant(t, store, 10)

		err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			if _, err := tx.Variants().FindByIDForUpdate(ctx, v.ID()); err != nil {
				return err
			}
			_, err := tx.Variants().FindByIDForUpdate(ctx, v.ID())
			return err
		})
		require.NoError(t, err)
	})
}

func TestUserCoupons_UniquePerUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uow := memory.NewUnitOfWork(store, 5*time.Second)
	c := builder.NewCouponBuilder().MustBuild()
	store.AddCoupon(c)
	user := builder.NewAccountBuilder().MustBuild()

	issue := func() error {
		return uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			locked, err := tx.Coupons().FindByIDForUpdate(ctx, c.ID())
			if err != nil {
				return err
			}
			uc, err := coupon.IssueUserCoupon(user.UserID(), locked, builder.BaseTime)
			if err != nil {
				return err
			}
			if err := tx.Coupons().Save(ctx, locked); err != nil {
				return err
			}
			return tx.UserCoupons().Create(ctx, uc)
		})
	}

	require.NoError(t, issue())
	require.ErrorIs(t, issue(), coupon.ErrAlreadyIssued)

	got, _ := store.Coupon(c.ID())
	assert.Equal(t, 1, got.IssuedQuantity(), "rejected issue must not consume quota")
	assert.Len(t, store.UserCoupons(), 1)
}

func TestOutbox_ClaimSkipsLockedEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uow := memory.NewUnitOfWork(store, time.Second)

	require.NoError(t, uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		for i := 0; i < 4; i++ {
			ev, err := event.NewOutbox(event.TopicOrders, "k", event.TypeOrderCreated, map[string]int{"n": i}, builder.BaseTime)
			if err != nil {
				return err
			}
			if err := tx.Outbox().Append(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	}))

	claimed := make(chan []event.Outbox)
	release := make(chan struct{})
	go func() {
		_ = uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			evs, err := tx.Outbox().ClaimUnpublished(ctx, 3)
			claimed <- evs
			<-release
			return err
		})
	}()
	first := <-claimed
	require.Len(t, first, 3)

	err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		evs, err := tx.Outbox().ClaimUnpublished(ctx, 10)
		require.NoError(t, err)
		require.Len(t, evs, 1, "only the unclaimed event is visible")
		for _, ev := range first {
			assert.NotEqual(t, ev.ID, evs[0].ID)
		}
		return tx.Outbox().MarkPublished(ctx, []uuid.UUID{evs[0].ID}, builder.BaseTime)
	})
	close(release)
	require.NoError(t, err)

	var published int
	for _, ev := range store.OutboxEvents() {
		if ev.PublishedAt != nil {
			published++
		}
	}
	assert.Equal(t, 1, published)
}
