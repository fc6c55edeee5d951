//go:build unit || e2e

package builder

import (
	"time"

	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/domain/product"

	"github.com/google/uuid"
)

var BaseTime = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

type ProductBuilder struct {
	ID          uuid.UUID
	Name        string
	Price       int64
	IsAvailable bool
	Now         time.Time
}

func NewProductBuilder() *ProductBuilder {
	return &ProductBuilder{
		ID:          uuid.New(),
		Name:        "Basic T-Shirt",
		Price:       25000,
		IsAvailable: true,
		Now:         BaseTime,
	}
}

func (p *ProductBuilder) With(mutate func(*ProductBuilder)) *ProductBuilder {
	mutate(p)
	return p
}

func (p *ProductBuilder) BuildDomain() *product.Product {
	return product.ReconstructProduct(p.ID, p.Name, p.Price, p.IsAvailable, p.Now, p.Now)
}

type VariantBuilder struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	Name          string
	ExtraPrice    int64
	Stock         int64
	ReservedStock int64
	Now           time.Time
}

func NewVariantBuilder() *VariantBuilder {
	return &VariantBuilder{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Name:      "Black / M",
		Stock:     10,
		Now:       BaseTime,
	}
}

func (v *VariantBuilder) With(mutate func(*VariantBuilder)) *VariantBuilder {
	mutate(v)
	return v
}

func (v *VariantBuilder) ForProduct(p *product.Product) *VariantBuilder {
	v.ProductID = p.ID()
	return v
}

func (v *VariantBuilder) BuildDomain() (*inventory.Variant, error) {
	return inventory.ReconstructVariant(v.ID, v.ProductID, v.Name, v.ExtraPrice, v.Stock, v.ReservedStock, v.Now)
}

func (v *VariantBuilder) MustBuild() *inventory.Variant {
	variant, err := v.BuildDomain()
	if err != nil {
		panic(err)
	}
	return variant
}
