package product

import (
	"strings"
	"time"

	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound    = errs.NewDomain("P001", "product not found")
	ErrProductUnavailable = errs.NewDomain("P005", "product is not available for sale")
)

// Product is the catalog entry a variant belongs to. The core only reads it to snapshot name and price.
type Product struct {
	id          uuid.UUID
	name        string
	price       int64
	isAvailable bool
	createdAt   time.Time
	updatedAt   time.Time
}

func NewProduct(name string, price int64, now time.Time) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Invariant("product name must not be empty")
	}
	if price < 0 {
		return nil, errs.Invariantf("product price must not be negative: %d", price)
	}
	return &Product{
		id:          uuid.New(),
		name:        name,
		price:       price,
		isAvailable: true,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructProduct(id uuid.UUID, name string, price int64, isAvailable bool, createdAt, updatedAt time.Time) *Product {
	return &Product{
		id:          id,
		name:        name,
		price:       price,
		isAvailable: isAvailable,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// UnitPrice is the price charged for one unit of a variant carrying extraPrice.
func (p *Product) UnitPrice(extraPrice int64) int64 {
	return p.price + extraPrice
}

func (p *Product) EnsureAvailable() error {
	if !p.isAvailable {
		return errs.Wrapf(ErrProductUnavailable, "product %s", p.id)
	}
	return nil
}

func (p *Product) ID() uuid.UUID        { return p.id }
func (p *Product) Name() string         { return p.name }
func (p *Product) Price() int64         { return p.price }
func (p *Product) IsAvailable() bool    { return p.isAvailable }
func (p *Product) CreatedAt() time.Time { return p.createdAt }
func (p *Product) UpdatedAt() time.Time { return p.updatedAt }
