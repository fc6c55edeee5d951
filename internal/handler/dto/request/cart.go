package request

import (
	"commerce-core/internal/usecase/commands"

	"github.com/google/uuid"
)

type AddToCartRequest struct {
	ProductOptionID uuid.UUID `json:"productOptionId" binding:"required"`
	// quantity is validated by the cart rules so a bad value reports O001
	Quantity int64 `json:"quantity"`
}

func (r AddToCartRequest) ToInput(userID uuid.UUID) commands.AddToCartInput {
	return commands.AddToCartInput{UserID: userID, VariantID: r.ProductOptionID, Quantity: r.Quantity}
}
