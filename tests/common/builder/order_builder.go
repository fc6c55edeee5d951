//go:build unit || e2e

package builder

import (
	"time"

	"commerce-core/internal/domain/order"

	"github.com/google/uuid"
)

type LineSpec struct {
	VariantID   uuid.UUID
	ProductName string
	UnitPrice   int64
	Quantity    int64
}

type OrderBuilder struct {
	UserID uuid.UUID
	Lines  []LineSpec
	Now    time.Time
	Window time.Duration
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		UserID: uuid.New(),
		Lines: []LineSpec{
			{VariantID: uuid.New(), ProductName: "Basic T-Shirt", UnitPrice: 25000, Quantity: 2},
		},
		Now:    BaseTime,
		Window: order.DefaultPaymentWindow,
	}
}

func (o *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(o)
	return o
}

func (o *OrderBuilder) WithLine(variantID uuid.UUID, name string, unitPrice, quantity int64) *OrderBuilder {
	o.Lines = append(o.Lines, LineSpec{VariantID: variantID, ProductName: name, UnitPrice: unitPrice, Quantity: quantity})
	return o
}

func (o *OrderBuilder) BuildDomain() (*order.Order, error) {
	lines := make([]order.Line, 0, len(o.Lines))
	for _, line := range o.Lines {
		l, err := order.NewLine(line.VariantID, line.ProductName, line.UnitPrice, line.Quantity)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return order.New(o.UserID, lines, o.Now, o.Window)
}

func (o *OrderBuilder) MustBuild() *order.Order {
	ord, err := o.BuildDomain()
	if err != nil {
		panic(err)
	}
	return ord
}
