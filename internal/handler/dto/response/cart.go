package response

import (
	"time"

	"commerce-core/internal/domain/cart"
	"commerce-core/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type CartItemResponse struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"productId"`
	ProductName    string    `json:"productName"`
	VariantID      uuid.UUID `json:"productOptionId"`
	VariantName    string    `json:"productOptionName"`
	UnitPrice      int64     `json:"unitPrice"`
	Quantity       int64     `json:"quantity"`
	Subtotal       int64     `json:"subtotal"`
	AvailableStock int64     `json:"availableStock"`
	AddedAt        time.Time `json:"addedAt"`
}

type CartResponse struct {
	Items       []CartItemResponse `json:"items"`
	TotalAmount int64              `json:"totalAmount"`
}

// AddedCartItemResponse is the item as stored, before pricing
type AddedCartItemResponse struct {
	ID        uuid.UUID `json:"id"`
	VariantID uuid.UUID `json:"productOptionId"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromCartView(v *queries.CartView) *CartResponse {
	res := &CartResponse{Items: make([]CartItemResponse, 0, len(v.Items)), TotalAmount: v.TotalAmount}
	_ = copier.Copy(&res.Items, v.Items)
	if res.Items == nil {
		res.Items = []CartItemResponse{}
	}
	return res
}

func FromCartItem(it *cart.Item) *AddedCartItemResponse {
	return &AddedCartItemResponse{
		ID:        it.ID(),
		VariantID: it.VariantID(),
		Quantity:  it.Quantity(),
		UpdatedAt: it.UpdatedAt(),
	}
}
