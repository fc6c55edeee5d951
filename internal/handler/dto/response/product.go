package response

import (
	"commerce-core/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ProductOptionResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ExtraPrice     int64     `json:"extraPrice"`
	UnitPrice      int64     `json:"unitPrice"`
	AvailableStock int64     `json:"availableStock"`
}

type ProductResponse struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Price       int64                   `json:"price"`
	IsAvailable bool                    `json:"isAvailable"`
	Options     []ProductOptionResponse `json:"options"`
}

func FromProductView(v *queries.ProductView) *ProductResponse {
	res := &ProductResponse{Options: make([]ProductOptionResponse, 0, len(v.Options))}
	_ = copier.Copy(res, v)
	if res.Options == nil {
		res.Options = []ProductOptionResponse{}
	}
	return res
}

func FromProductViews(views []queries.ProductView) []ProductResponse {
	res := make([]ProductResponse, 0, len(views))
	for i := range views {
		res = append(res, *FromProductView(&views[i]))
	}
	return res
}
