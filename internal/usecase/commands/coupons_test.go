//go:build unit

package commands_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/event"
	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestIssueCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("issues and counts quota", func(t *testing.T) {
		f := newFixture(t)
		user := f.seedAccount(t, 0)
		c := f.seedCoupon(t, 10, 3)

		uc, err := f.coupons.IssueCoupon(ctx, commands.IssueCouponInput{UserID: user.UserID(), CouponID: c.ID()})
		require.NoError(t, err)
		assert.Equal(t, user.UserID(), uc.UserID())
		assert.Equal(t, c.ExpiresAt(), uc.ExpiresAt(), "issuance inherits the coupon expiry")

		stored, _ := f.store.Coupon(c.ID())
		assert.Equal(t, 1, stored.IssuedQuantity())
		assert.Equal(t, 2, stored.Remaining())

		events := f.store.OutboxEvents()
		require.Len(t, events, 1)
		assert.Equal(t, event.TypeCouponIssued, events[0].Type)
	})

	t.Run("one per user", func(t *testing.T) {
		f := newFixture(t)
		user := f.seedAccount(t, 0)
		c := f.seedCoupon(t, 10, 3)
		mustIssue(t, f, user.UserID(), c.ID())

		_, err := f.coupons.IssueCoupon(ctx, commands.IssueCouponInput{UserID: user.UserID(), CouponID: c.ID()})
		require.ErrorIs(t, err, coupon.ErrAlreadyIssued)
		stored, _ := f.store.Coupon(c.ID())
		assert.Equal(t, 1, stored.IssuedQuantity())
	})

	t.Run("expired coupon", func(t *testing.T) {
		f := newFixture(t)
		user := f.seedAccount(t, 0)
		c := f.seedCoupon(t, 10, 3)
		f.clock.Add(8 * 24 * time.Hour)

		_, err := f.coupons.IssueCoupon(ctx, commands.IssueCouponInput{UserID: user.UserID(), CouponID: c.ID()})
		require.ErrorIs(t, err, coupon.ErrCouponExpired)
	})

	t.Run("unknown user or coupon", func(t *testing.T) {
		f := newFixture(t)
		user := f.seedAccount(t, 0)
		c := f.seedCoupon(t, 10, 3)

		_, err := f.coupons.IssueCoupon(ctx, commands.IssueCouponInput{UserID: uuid.New(), CouponID: c.ID()})
		require.ErrorIs(t, err, ledger.ErrUserNotFound)
		_, err = f.coupons.IssueCoupon(ctx, commands.IssueCouponInput{UserID: user.UserID(), CouponID: uuid.New()})
		require.ErrorIs(t, err, coupon.ErrCouponNotFound)
	})
}

func TestIssueCoupon_ConcurrentCallersGetExactlyTheQuota(t *testing.T) {
	const (
		quota   = 10
		callers = 50
	)
	ctx := context.Background()
	f := newFixture(t)
	c := f.seedCoupon(t, 10, quota)
	users := make([]uuid.UUID, callers)
	for i := range users {
		users[i] = f.seedAccount(t, 0).UserID()
	}

	var issued, soldOut atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for _, userID := range users {
		g.Go(func() error {
			_, err := f.coupons.IssueCoupon(gctx, commands.IssueCouponInput{UserID: userID, CouponID: c.ID()})
			switch {
			case err == nil:
				issued.Add(1)
			case errors.Is(err, coupon.ErrCouponSoldOut):
				soldOut.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(quota), issued.Load())
	assert.Equal(t, int32(callers-quota), soldOut.Load())
	stored, _ := f.store.Coupon(c.ID())
	assert.Equal(t, quota, stored.IssuedQuantity())
	assert.Len(t, f.store.UserCoupons(), quota)
}

func TestIssueCoupon_SameUserConcurrently(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedAccount(t, 0)
	c := f.seedCoupon(t, 10, 100)

	var issued, dup atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := f.coupons.IssueCoupon(gctx, commands.IssueCouponInput{UserID: user.UserID(), CouponID: c.ID()})
			switch {
			case err == nil:
				issued.Add(1)
			case errors.Is(err, coupon.ErrAlreadyIssued):
				dup.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), issued.Load())
	assert.Equal(t, int32(9), dup.Load())
	stored, _ := f.store.Coupon(c.ID())
	assert.Equal(t, 1, stored.IssuedQuantity())
}
