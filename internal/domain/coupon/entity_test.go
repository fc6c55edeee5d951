//go:build unit

package coupon_test

import (
	"math"
	"testing"
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/pkg/errs"
	"commerce-core/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.CouponBuilder)
	ok     bool
}

func TestCoupon_Validation(t *testing.T) {
	runCases(t, []testCase{
		{name: "defaults", mutate: func(b *builder.CouponBuilder) {}, ok: true},
		{name: "rate 100", mutate: func(b *builder.CouponBuilder) { b.DiscountRate = 100 }, ok: true},
		{name: "rate 1", mutate: func(b *builder.CouponBuilder) { b.DiscountRate = 1 }, ok: true},
		{name: "rate 0", mutate: func(b *builder.CouponBuilder) { b.DiscountRate = 0 }},
		{name: "rate 101", mutate: func(b *builder.CouponBuilder) { b.DiscountRate = 101 }},
		{name: "negative total", mutate: func(b *builder.CouponBuilder) { b.TotalQuantity = -1 }},
		{name: "zero total", mutate: func(b *builder.CouponBuilder) { b.TotalQuantity = 0 }, ok: true},
		{
			name: "issued above total",
			mutate: func(b *builder.CouponBuilder) {
				b.TotalQuantity = 5
				b.IssuedQuantity = 6
			},
		},
		{name: "negative issued", mutate: func(b *builder.CouponBuilder) { b.IssuedQuantity = -1 }},
	})

	t.Run("new coupon requires a name", func(t *testing.T) {
		_, err := coupon.NewCoupon("  ", 10, 10, builder.BaseTime.Add(time.Hour), builder.BaseTime)
		require.Error(t, err)
		assert.True(t, errs.IsInvariant(err))
	})
}

func TestCoupon_Issue(t *testing.T) {
	t.Run("issues until the quota is exhausted", func(t *testing.T) {
		c := builder.NewCouponBuilder().With(func(b *builder.CouponBuilder) { b.TotalQuantity = 3 }).MustBuild()
		for i := 1; i <= 3; i++ {
			require.True(t, c.CanIssue(builder.BaseTime))
			n, err := c.Issue(builder.BaseTime)
			require.NoError(t, err)
			assert.Equal(t, i, n)
		}
		assert.Equal(t, 0, c.Remaining())
		assert.False(t, c.CanIssue(builder.BaseTime))

		n, err := c.Issue(builder.BaseTime)
		require.ErrorIs(t, err, coupon.ErrCouponSoldOut)
		assert.Equal(t, 3, n)
		assert.Equal(t, 3, c.IssuedQuantity())
	})

	t.Run("expired coupon", func(t *testing.T) {
		c := builder.NewCouponBuilder().MustBuild()
		late := c.ExpiresAt().Add(time.Second)

		assert.False(t, c.CanIssue(late))
		_, err := c.Issue(late)
		require.ErrorIs(t, err, coupon.ErrCouponExpired)
		assert.Equal(t, 0, c.IssuedQuantity())
	})

	t.Run("expiry instant is still valid", func(t *testing.T) {
		c := builder.NewCouponBuilder().MustBuild()
		_, err := c.Issue(c.ExpiresAt())
		require.NoError(t, err)
	})
}

func TestCoupon_Discount(t *testing.T) {
	cases := []struct {
		rate   int
		amount int64
		want   int64
	}{
		{rate: 10, amount: 50000, want: 5000},
		{rate: 15, amount: 999, want: 149}, // 149.85 truncates
		{rate: 33, amount: 100, want: 33},
		{rate: 100, amount: 12345, want: 12345},
		{rate: 1, amount: 99, want: 0},
		{rate: 50, amount: 0, want: 0},
		{rate: 100, amount: math.MaxInt64, want: math.MaxInt64},
		{rate: 37, amount: math.MaxInt64, want: 3412647653636267048},
		{rate: 1, amount: math.MaxInt64, want: 92233720368547758},
	}
	for _, c := range cases {
		cp := builder.NewCouponBuilder().With(func(b *builder.CouponBuilder) { b.DiscountRate = c.rate }).MustBuild()
		assert.Equal(t, c.want, cp.Discount(c.amount), "rate=%d amount=%d", c.rate, c.amount)
	}
}

func TestUserCoupon(t *testing.T) {
	userID := uuid.New()

	t.Run("issue copies coupon expiry and consumes quota", func(t *testing.T) {
		c := builder.NewCouponBuilder().MustBuild()
		uc, err := coupon.IssueUserCoupon(userID, c, builder.BaseTime)
		require.NoError(t, err)

		assert.Equal(t, 1, c.IssuedQuantity())
		assert.Equal(t, c.ID(), uc.CouponID())
		assert.Equal(t, c.ExpiresAt(), uc.ExpiresAt())
		assert.True(t, uc.IsOwnedBy(userID))
		assert.Nil(t, uc.UsedAt())
		assert.Nil(t, uc.OrderID())
		assert.Equal(t, coupon.UserCouponAvailable, uc.Status(builder.BaseTime))
	})

	t.Run("sold out coupon issues nothing", func(t *testing.T) {
		c := builder.NewCouponBuilder().With(func(b *builder.CouponBuilder) {
			b.TotalQuantity = 1
			b.IssuedQuantity = 1
		}).MustBuild()
		uc, err := coupon.IssueUserCoupon(userID, c, builder.BaseTime)
		require.ErrorIs(t, err, coupon.ErrCouponSoldOut)
		assert.Nil(t, uc)
	})

	t.Run("use once", func(t *testing.T) {
		c := builder.NewCouponBuilder().MustBuild()
		uc, err := coupon.IssueUserCoupon(userID, c, builder.BaseTime)
		require.NoError(t, err)

		orderID := uuid.New()
		at := builder.BaseTime.Add(time.Hour)
		require.NoError(t, uc.Use(orderID, at))
		require.NotNil(t, uc.OrderID())
		assert.Equal(t, orderID, *uc.OrderID())
		assert.Equal(t, at, *uc.UsedAt())
		assert.Equal(t, coupon.UserCouponUsed, uc.Status(at))

		require.ErrorIs(t, uc.Use(uuid.New(), at), coupon.ErrAlreadyUsed)
		assert.Equal(t, orderID, *uc.OrderID())
	})

	t.Run("use after expiry", func(t *testing.T) {
		c := builder.NewCouponBuilder().MustBuild()
		uc, err := coupon.IssueUserCoupon(userID, c, builder.BaseTime)
		require.NoError(t, err)

		late := uc.ExpiresAt().Add(time.Minute)
		assert.Equal(t, coupon.UserCouponExpired, uc.Status(late))
		require.ErrorIs(t, uc.Use(uuid.New(), late), coupon.ErrCouponExpired)
		assert.Nil(t, uc.UsedAt())
	})

	t.Run("reconstruct rejects half-used record", func(t *testing.T) {
		orderID := uuid.New()
		_, err := coupon.ReconstructUserCoupon(uuid.New(), userID, uuid.New(), &orderID, builder.BaseTime, nil, builder.BaseTime.Add(time.Hour))
		require.Error(t, err)
		assert.True(t, errs.IsInvariant(err))
	})

	t.Run("parse status", func(t *testing.T) {
		st, err := coupon.ParseUserCouponStatus("USED")
		require.NoError(t, err)
		assert.Equal(t, coupon.UserCouponUsed, st)

		_, err = coupon.ParseUserCouponStatus("used")
		require.ErrorIs(t, err, coupon.ErrInvalidUserCouponStatus)
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewCouponBuilder().With(c.mutate).BuildDomain()

			if c.ok {
				require.NoError(t, err)
				require.NotNil(t, actual)
				return
			}
			require.Nil(t, actual)
			require.Error(t, err)
			assert.True(t, errs.IsInvariant(err))
		})
	}
}
