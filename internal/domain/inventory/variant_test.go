//go:build unit

package inventory_test

import (
	"testing"
	"time"

	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/pkg/errs"
	"commerce-core/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type opCase struct {
	name    string
	stock   int64
	reserve int64
	op      func(v *inventory.Variant) error
	errIs   error
	// expected counters after op
	wantStock    int64
	wantReserved int64
}

func TestVariant_Reserve(t *testing.T) {
	t.Run("scenario: reserve 7, reject 5, reserve remaining 3", func(t *testing.T) {
		v := builder.NewVariantBuilder().With(func(b *builder.VariantBuilder) { b.Stock = 10 }).MustBuild()
		now := builder.BaseTime

		require.NoError(t, v.Reserve(7, now))
		assert.Equal(t, int64(7), v.ReservedStock())
		assert.Equal(t, int64(3), v.Available())

		err := v.Reserve(5, now)
		require.ErrorIs(t, err, inventory.ErrInsufficientStock)
		assert.Equal(t, int64(7), v.ReservedStock(), "failed reserve must not change counters")

		require.NoError(t, v.Reserve(3, now))
		assert.Equal(t, int64(10), v.ReservedStock())
		assert.Equal(t, int64(0), v.Available())
		assert.Equal(t, int64(10), v.Stock(), "reserve never touches stock")
	})

	runOpCases(t, []opCase{
		{
			name: "zero quantity", stock: 10,
			op:    func(v *inventory.Variant) error { return v.Reserve(0, builder.BaseTime) },
			errIs: inventory.ErrInvalidQuantity, wantStock: 10,
		},
		{
			name: "negative quantity", stock: 10,
			op:    func(v *inventory.Variant) error { return v.Reserve(-1, builder.BaseTime) },
			errIs: inventory.ErrInvalidQuantity, wantStock: 10,
		},
		{
			name: "exactly available", stock: 10, reserve: 4,
			op:        func(v *inventory.Variant) error { return v.Reserve(6, builder.BaseTime) },
			wantStock: 10, wantReserved: 10,
		},
		{
			name: "one over available", stock: 10, reserve: 4,
			op:    func(v *inventory.Variant) error { return v.Reserve(7, builder.BaseTime) },
			errIs: inventory.ErrInsufficientStock, wantStock: 10, wantReserved: 4,
		},
		{
			name: "no stock at all", stock: 0,
			op:    func(v *inventory.Variant) error { return v.Reserve(1, builder.BaseTime) },
			errIs: inventory.ErrInsufficientStock,
		},
	})
}

func TestVariant_Confirm(t *testing.T) {
	runOpCases(t, []opCase{
		{
			name: "confirm full reservation", stock: 10, reserve: 3,
			op:        func(v *inventory.Variant) error { return v.Confirm(3, builder.BaseTime) },
			wantStock: 7, wantReserved: 0,
		},
		{
			name: "confirm part of reservation", stock: 10, reserve: 5,
			op:        func(v *inventory.Variant) error { return v.Confirm(2, builder.BaseTime) },
			wantStock: 8, wantReserved: 3,
		},
		{
			name: "confirm more than reserved", stock: 10, reserve: 2,
			op:    func(v *inventory.Variant) error { return v.Confirm(3, builder.BaseTime) },
			errIs: inventory.ErrReservationShortfall, wantStock: 10, wantReserved: 2,
		},
		{
			name: "confirm zero", stock: 10, reserve: 2,
			op:    func(v *inventory.Variant) error { return v.Confirm(0, builder.BaseTime) },
			errIs: inventory.ErrInvalidQuantity, wantStock: 10, wantReserved: 2,
		},
	})
}

func TestVariant_Release(t *testing.T) {
	runOpCases(t, []opCase{
		{
			name: "release full reservation", stock: 10, reserve: 3,
			op:        func(v *inventory.Variant) error { return v.Release(3, builder.BaseTime) },
			wantStock: 10, wantReserved: 0,
		},
		{
			name: "release with nothing reserved", stock: 10,
			op:    func(v *inventory.Variant) error { return v.Release(1, builder.BaseTime) },
			errIs: inventory.ErrReservationShortfall, wantStock: 10,
		},
		{
			name: "release negative", stock: 10, reserve: 1,
			op:    func(v *inventory.Variant) error { return v.Release(-1, builder.BaseTime) },
			errIs: inventory.ErrInvalidQuantity, wantStock: 10, wantReserved: 1,
		},
	})

	t.Run("release after reserve restores available stock", func(t *testing.T) {
		for _, q := range []int64{1, 4, 10} {
			v := builder.NewVariantBuilder().With(func(b *builder.VariantBuilder) {
				b.Stock = 10
				b.ReservedStock = 0
			}).MustBuild()
			before := v.Available()

			require.NoError(t, v.Reserve(q, builder.BaseTime))
			require.NoError(t, v.Release(q, builder.BaseTime.Add(time.Minute)))

			assert.Equal(t, before, v.Available())
			assert.Equal(t, builder.BaseTime.Add(time.Minute), v.UpdatedAt())
		}
	})
}

func TestReconstructVariant(t *testing.T) {
	cases := []struct {
		name     string
		stock    int64
		reserved int64
		wantErr  bool
	}{
		{name: "valid", stock: 5, reserved: 5},
		{name: "negative stock", stock: -1, reserved: 0, wantErr: true},
		{name: "negative reserved", stock: 5, reserved: -1, wantErr: true},
		{name: "reserved above stock", stock: 5, reserved: 6, wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := builder.NewVariantBuilder().With(func(b *builder.VariantBuilder) {
				b.Stock = c.stock
				b.ReservedStock = c.reserved
			}).BuildDomain()
			if !c.wantErr {
				require.NoError(t, err)
				require.NotNil(t, v)
				return
			}
			require.Error(t, err)
			assert.Nil(t, v)
			assert.True(t, errs.IsInvariant(err))
		})
	}

	t.Run("new variant rejects negative stock", func(t *testing.T) {
		_, err := inventory.NewVariant(builder.NewProductBuilder().ID, "Red / S", 0, -3, builder.BaseTime)
		require.ErrorIs(t, err, inventory.ErrInvalidStockQuantity)
	})
}

func runOpCases(t *testing.T, cases []opCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := builder.NewVariantBuilder().With(func(b *builder.VariantBuilder) {
				b.Stock = c.stock
				b.ReservedStock = c.reserve
			}).MustBuild()

			err := c.op(v)

			if c.errIs == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, c.errIs)
			}
			assert.Equal(t, c.wantStock, v.Stock())
			assert.Equal(t, c.wantReserved, v.ReservedStock())
			assert.GreaterOrEqual(t, v.Available(), int64(0))
		})
	}
}
