package order

import (
	"math"
	"strings"

	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

// Line is an immutable order item. Name and price are snapshots taken when the order was placed.
type Line struct {
	id          uuid.UUID
	orderID     uuid.UUID
	variantID   uuid.UUID
	productName string
	unitPrice   int64
	quantity    int64
	subtotal    int64
}

func NewLine(variantID uuid.UUID, productName string, unitPrice, quantity int64) (Line, error) {
	if quantity <= 0 {
		return Line{}, errs.Invariantf("order line quantity must be positive: %d", quantity)
	}
	if unitPrice < 0 {
		return Line{}, errs.Invariantf("order line unit price must not be negative: %d", unitPrice)
	}
	if strings.TrimSpace(productName) == "" {
		return Line{}, errs.Invariant("order line product name must not be empty")
	}
	if unitPrice > math.MaxInt64/quantity {
		return Line{}, errs.Wrapf(ErrAmountOverflow, "unit price %d x quantity %d", unitPrice, quantity)
	}
	return Line{
		id:          uuid.New(),
		variantID:   variantID,
		productName: productName,
		unitPrice:   unitPrice,
		quantity:    quantity,
		subtotal:    unitPrice * quantity,
	}, nil
}

func ReconstructLine(id, orderID, variantID uuid.UUID, productName string, unitPrice, quantity, subtotal int64) (Line, error) {
	if quantity <= 0 || unitPrice < 0 || subtotal != unitPrice*quantity {
		return Line{}, errs.Invariantf("order line %s: price=%d quantity=%d subtotal=%d", id, unitPrice, quantity, subtotal)
	}
	return Line{
		id:          id,
		orderID:     orderID,
		variantID:   variantID,
		productName: productName,
		unitPrice:   unitPrice,
		quantity:    quantity,
		subtotal:    subtotal,
	}, nil
}

func (l Line) ID() uuid.UUID        { return l.id }
func (l Line) OrderID() uuid.UUID   { return l.orderID }
func (l Line) VariantID() uuid.UUID { return l.variantID }
func (l Line) ProductName() string  { return l.productName }
func (l Line) UnitPrice() int64     { return l.unitPrice }
func (l Line) Quantity() int64      { return l.quantity }
func (l Line) Subtotal() int64      { return l.subtotal }
