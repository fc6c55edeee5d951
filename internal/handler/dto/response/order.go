package response

import (
	"time"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type OrderLineResponse struct {
	ID          uuid.UUID `json:"id"`
	VariantID   uuid.UUID `json:"productOptionId"`
	ProductName string    `json:"productName"`
	UnitPrice   int64     `json:"unitPrice"`
	Quantity    int64     `json:"quantity"`
	Subtotal    int64     `json:"subtotal"`
}

type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	UserID         uuid.UUID           `json:"userId"`
	CouponID       *uuid.UUID          `json:"couponId,omitempty"`
	UserCouponID   *uuid.UUID          `json:"userCouponId,omitempty"`
	Status         string              `json:"status"`
	TotalAmount    int64               `json:"totalAmount"`
	DiscountAmount int64               `json:"discountAmount"`
	FinalAmount    int64               `json:"finalAmount"`
	Lines          []OrderLineResponse `json:"items"`
	CreatedAt      time.Time           `json:"createdAt"`
	PaidAt         *time.Time          `json:"paidAt,omitempty"`
	ExpiresAt      time.Time           `json:"expiresAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type OrderListResponse struct {
	Items      []OrderResponse `json:"items"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

func FromOrderView(v *queries.OrderView) *OrderResponse {
	var res OrderResponse
	_ = copier.Copy(&res, v)
	return &res
}

func FromOrder(o *order.Order) *OrderResponse {
	v := queries.ToOrderView(o)
	return FromOrderView(&v)
}

func FromOrderPage(p *queries.OrderPage) *OrderListResponse {
	res := &OrderListResponse{Items: make([]OrderResponse, 0, len(p.Items)), NextCursor: p.NextCursor}
	for i := range p.Items {
		res.Items = append(res.Items, *FromOrderView(&p.Items[i]))
	}
	return res
}
