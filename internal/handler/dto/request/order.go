package request

import (
	"strings"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderItemRequest struct {
	ProductOptionID uuid.UUID `json:"productOptionId" binding:"required"`
	// quantity is validated by the order rules so a bad value reports O001
	Quantity int64 `json:"quantity"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,dive"`
}

func (r CreateOrderRequest) ToInput(userID uuid.UUID) commands.CreateOrderInput {
	lines := make([]commands.OrderLineInput, len(r.Items))
	for i, it := range r.Items {
		lines[i] = commands.OrderLineInput{VariantID: it.ProductOptionID, Quantity: it.Quantity}
	}
	return commands.CreateOrderInput{UserID: userID, Lines: lines}
}

type ProcessPaymentRequest struct {
	UserCouponID *uuid.UUID `json:"userCouponId,omitempty"`
}

type ListOrdersQuery struct {
	Status string `form:"status"`
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q ListOrdersQuery) ToParams(userID uuid.UUID) (queries.ListOrdersParams, error) {
	params := queries.ListOrdersParams{UserID: userID, Cursor: q.Cursor, Limit: q.Limit}
	if q.Status != "" {
		status, err := order.ParseStatus(strings.ToUpper(q.Status))
		if err != nil {
			return queries.ListOrdersParams{}, err
		}
		params.Status = &status
	}
	return params, nil
}
