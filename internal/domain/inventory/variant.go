package inventory

import (
	"time"

	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrVariantNotFound      = errs.NewDomain("P006", "product option not found")
	ErrInsufficientStock    = errs.NewDomain("P002", "insufficient stock")
	ErrInvalidStockQuantity = errs.NewDomain("P003", "invalid stock quantity")
	ErrReservationShortfall = errs.NewDomain("P004", "reserved stock is smaller than the requested quantity")
	ErrInvalidQuantity      = errs.NewDomain("O001", "quantity must be greater than zero")
)

// Variant is a purchasable stock unit. stock counts units on hand; reservedStock counts the part of it
// held by pending orders. 0 <= reservedStock <= stock holds after every method.
type Variant struct {
	id            uuid.UUID
	productID     uuid.UUID
	name          string
	extraPrice    int64
	stock         int64
	reservedStock int64
	updatedAt     time.Time
}

func NewVariant(productID uuid.UUID, name string, extraPrice, stock int64, now time.Time) (*Variant, error) {
	if stock < 0 {
		return nil, ErrInvalidStockQuantity
	}
	if extraPrice < 0 {
		return nil, errs.Invariantf("variant extra price must not be negative: %d", extraPrice)
	}
	return &Variant{
		id:         uuid.New(),
		productID:  productID,
		name:       name,
		extraPrice: extraPrice,
		stock:      stock,
		updatedAt:  now,
	}, nil
}

func ReconstructVariant(id, productID uuid.UUID, name string, extraPrice, stock, reservedStock int64, updatedAt time.Time) (*Variant, error) {
	if stock < 0 || reservedStock < 0 || reservedStock > stock || extraPrice < 0 {
		return nil, errs.Invariantf("variant stock counters are inconsistent: id=%s stock=%d reserved=%d", id, stock, reservedStock)
	}
	return &Variant{
		id:            id,
		productID:     productID,
		name:          name,
		extraPrice:    extraPrice,
		stock:         stock,
		reservedStock: reservedStock,
		updatedAt:     updatedAt,
	}, nil
}

// Reserve holds qty units for a pending order. Total stock is unchanged.
func (v *Variant) Reserve(qty int64, now time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if v.Available() < qty {
		return errs.Wrapf(ErrInsufficientStock, "variant %s: available %d, requested %d", v.id, v.Available(), qty)
	}
	v.reservedStock += qty
	v.updatedAt = now
	return nil
}

// Confirm turns a reservation into a sale. It is the only operation that lowers stock.
func (v *Variant) Confirm(qty int64, now time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if v.reservedStock < qty {
		return errs.Wrapf(ErrReservationShortfall, "variant %s: reserved %d, confirming %d", v.id, v.reservedStock, qty)
	}
	v.stock -= qty
	v.reservedStock -= qty
	v.updatedAt = now
	return nil
}

// Release gives a reservation back. stock was never decremented by Reserve so only reservedStock moves.
func (v *Variant) Release(qty int64, now time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if v.reservedStock < qty {
		return errs.Wrapf(ErrReservationShortfall, "variant %s: reserved %d, releasing %d", v.id, v.reservedStock, qty)
	}
	v.reservedStock -= qty
	v.updatedAt = now
	return nil
}

func (v *Variant) Available() int64 {
	return v.stock - v.reservedStock
}

func (v *Variant) ID() uuid.UUID        { return v.id }
func (v *Variant) ProductID() uuid.UUID { return v.productID }
func (v *Variant) Name() string         { return v.name }
func (v *Variant) ExtraPrice() int64    { return v.extraPrice }
func (v *Variant) Stock() int64         { return v.stock }
func (v *Variant) ReservedStock() int64 { return v.reservedStock }
func (v *Variant) UpdatedAt() time.Time { return v.updatedAt }
