package queries

//go:generate mockgen -source=products.go -destination=../../../tests/mock/queries/products.go -package=mock_queries

import (
	"context"

	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/domain/product"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type ProductQueries interface {
	// ListProducts returns products on sale with the available stock of each option
	ListProducts(ctx context.Context) ([]ProductView, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductView, error)
}

type productQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewProductQueries(uow shared.UnitOfWork) ProductQueries {
	return &productQueriesImpl{uow: uow}
}

func (q *productQueriesImpl) ListProducts(ctx context.Context) ([]ProductView, error) {
	var views []ProductView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		products, err := tx.Products().ListAvailable(ctx)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(products))
		for i, p := range products {
			ids[i] = p.ID()
		}
		variants, err := tx.Variants().ListByProducts(ctx, ids)
		if err != nil {
			return err
		}

		views = make([]ProductView, len(products))
		for i, p := range products {
			views[i] = toProductView(p, variants[p.ID()])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (q *productQueriesImpl) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductView, error) {
	var view *ProductView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		variants, err := tx.Variants().ListByProducts(ctx, []uuid.UUID{p.ID()})
		if err != nil {
			return err
		}
		v := toProductView(p, variants[p.ID()])
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func toProductView(p *product.Product, variants []*inventory.Variant) ProductView {
	options := make([]ProductOptionView, len(variants))
	for i, v := range variants {
		options[i] = ProductOptionView{
			ID:             v.ID(),
			Name:           v.Name(),
			ExtraPrice:     v.ExtraPrice(),
			UnitPrice:      p.UnitPrice(v.ExtraPrice()),
			AvailableStock: v.Available(),
		}
	}
	return ProductView{
		ID:          p.ID(),
		Name:        p.Name(),
		Price:       p.Price(),
		IsAvailable: p.IsAvailable(),
		Options:     options,
	}
}
