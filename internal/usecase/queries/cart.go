package queries

//go:generate mockgen -source=cart.go -destination=../../../tests/mock/queries/cart.go -package=mock_queries

import (
	"context"
	"math"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type CartQueries interface {
	// GetCart prices every item at the current catalog price
	GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
}

type cartQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewCartQueries(uow shared.UnitOfWork) CartQueries {
	return &cartQueriesImpl{uow: uow}
}

func (q *cartQueriesImpl) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	var view *CartView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		items, err := tx.CartItems().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		variantIDs := make([]uuid.UUID, len(items))
		for i, it := range items {
			variantIDs[i] = it.VariantID()
		}
		variants, err := tx.Variants().FindByIDs(ctx, variantIDs)
		if err != nil {
			return err
		}
		productIDs := make([]uuid.UUID, 0, len(variants))
		for _, v := range variants {
			productIDs = append(productIDs, v.ProductID())
		}
		products, err := tx.Products().FindByIDs(ctx, productIDs)
		if err != nil {
			return err
		}

		v := &CartView{Items: make([]CartItemView, 0, len(items))}
		for _, it := range items {
			variant, ok := variants[it.VariantID()]
			if !ok {
				return errs.Invariantf("cart item %s references missing variant %s", it.ID(), it.VariantID())
			}
			p, ok := products[variant.ProductID()]
			if !ok {
				return errs.Invariantf("variant %s references missing product %s", variant.ID(), variant.ProductID())
			}

			unit := p.UnitPrice(variant.ExtraPrice())
			if unit > 0 && it.Quantity() > math.MaxInt64/unit {
				return errs.Wrapf(order.ErrAmountOverflow, "cart item %s: %d x %d", it.ID(), unit, it.Quantity())
			}
			subtotal := unit * it.Quantity()
			if v.TotalAmount > math.MaxInt64-subtotal {
				return errs.Wrapf(order.ErrAmountOverflow, "cart total for user %s", userID)
			}
			v.TotalAmount += subtotal

			v.Items = append(v.Items, CartItemView{
				ID:             it.ID(),
				ProductID:      p.ID(),
				ProductName:    p.Name(),
				VariantID:      variant.ID(),
				VariantName:    variant.Name(),
				UnitPrice:      unit,
				Quantity:       it.Quantity(),
				Subtotal:       subtotal,
				AvailableStock: variant.Available(),
				AddedAt:        it.CreatedAt(),
			})
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
