//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/domain/product"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/queries"
	"commerce-core/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) seedCatalog(t *testing.T) (shirt *product.Product, shirtOptions []*inventory.Variant, retired *product.Product) {
	t.Helper()
	shirt = builder.NewProductBuilder().With(func(b *builder.ProductBuilder) { b.Name = "Shirt"; b.Price = 20000 }).BuildDomain()
	black := builder.NewVariantBuilder().ForProduct(shirt).With(func(b *builder.VariantBuilder) {
		b.Name = "Black / L"
		b.ExtraPrice = 1000
		b.Stock = 10
		b.ReservedStock = 4
	}).MustBuild()
	white := builder.NewVariantBuilder().ForProduct(shirt).With(func(b *builder.VariantBuilder) { b.Name = "White / M"; b.Stock = 3 }).MustBuild()
	e.store.AddProduct(shirt, white, black)

	retired = builder.NewProductBuilder().With(func(b *builder.ProductBuilder) { b.Name = "Retired"; b.IsAvailable = false }).BuildDomain()
	e.store.AddProduct(retired, builder.NewVariantBuilder().ForProduct(retired).MustBuild())

	return shirt, []*inventory.Variant{black, white}, retired
}

func TestProductQueries_ListProducts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	shirt, options, _ := e.seedCatalog(t)
	apron := builder.NewProductBuilder().With(func(b *builder.ProductBuilder) { b.Name = "Apron"; b.Price = 5000 }).BuildDomain()
	e.store.AddProduct(apron)

	views, err := queries.NewProductQueries(e.uow).ListProducts(ctx)
	require.NoError(t, err)

	want := []queries.ProductView{
		{ID: apron.ID(), Name: "Apron", Price: 5000, IsAvailable: true, Options: []queries.ProductOptionView{}},
		{
			ID: shirt.ID(), Name: "Shirt", Price: 20000, IsAvailable: true,
			Options: []queries.ProductOptionView{
				{ID: options[0].ID(), Name: "Black / L", ExtraPrice: 1000, UnitPrice: 21000, AvailableStock: 6},
				{ID: options[1].ID(), Name: "White / M", ExtraPrice: 0, UnitPrice: 20000, AvailableStock: 3},
			},
		},
	}
	if diff := cmp.Diff(want, views); diff != "" {
		t.Errorf("ListProducts mismatch (-want +got):\n%s", diff)
	}
}

func TestProductQueries_GetProduct(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, _, retired := e.seedCatalog(t)
	q := queries.NewProductQueries(e.uow)

	t.Run("success: off-sale products stay readable", func(t *testing.T) {
		view, err := q.GetProduct(ctx, retired.ID())
		require.NoError(t, err)
		assert.False(t, view.IsAvailable)
		assert.Len(t, view.Options, 1)
	})

	t.Run("error: unknown product", func(t *testing.T) {
		_, err := q.GetProduct(ctx, uuid.New())
		require.ErrorIs(t, err, product.ErrProductNotFound)
	})
}

func TestCartQueries_GetCart(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	_, options, _ := e.seedCatalog(t)
	userID, _ := e.seed(t)
	q := queries.NewCartQueries(e.uow)

	t.Run("success: empty cart", func(t *testing.T) {
		view, err := q.GetCart(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, view.Items)
		assert.Zero(t, view.TotalAmount)
	})

	_, err := e.cart.AddToCart(ctx, commands.AddToCartInput{UserID: userID, VariantID: options[0].ID(), Quantity: 2})
	require.NoError(t, err)
	e.clock.Add(time.Second)
	_, err = e.cart.AddToCart(ctx, commands.AddToCartInput{UserID: userID, VariantID: options[1].ID(), Quantity: 3})
	require.NoError(t, err)

	t.Run("success: subtotals and total at current prices", func(t *testing.T) {
		view, err := q.GetCart(ctx, userID)
		require.NoError(t, err)
		require.Len(t, view.Items, 2)

		first := view.Items[0]
		assert.Equal(t, options[0].ID(), first.VariantID)
		assert.Equal(t, "Shirt", first.ProductName)
		assert.Equal(t, "Black / L", first.VariantName)
		assert.Equal(t, int64(21000), first.UnitPrice)
		assert.Equal(t, int64(42000), first.Subtotal)
		assert.Equal(t, int64(6), first.AvailableStock)

		assert.Equal(t, int64(60000), view.Items[1].Subtotal)
		assert.Equal(t, int64(102000), view.TotalAmount)
	})

	t.Run("success: other users see an empty cart", func(t *testing.T) {
		otherID, _ := e.seed(t)
		view, err := q.GetCart(ctx, otherID)
		require.NoError(t, err)
		assert.Empty(t, view.Items)
	})
}
