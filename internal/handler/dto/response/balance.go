package response

import (
	"time"

	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BalanceResponse struct {
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BalanceLogResponse struct {
	ID           uuid.UUID `json:"id"`
	Amount       int64     `json:"amount"`
	BeforeAmount int64     `json:"beforeAmount"`
	AfterAmount  int64     `json:"afterAmount"`
	Code         string    `json:"code"`
	Note         *string   `json:"note,omitempty"`
	RefID        *string   `json:"refId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type BalanceLogListResponse struct {
	Items []BalanceLogResponse `json:"items"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
	Total int                  `json:"total"`
}

func FromBalanceView(v *queries.BalanceView) *BalanceResponse {
	var res BalanceResponse
	_ = copier.Copy(&res, v)
	return &res
}

func FromBalanceLogPage(p *queries.BalanceLogPage) *BalanceLogListResponse {
	res := &BalanceLogListResponse{Items: []BalanceLogResponse{}}
	_ = copier.Copy(res, p)
	return res
}

func FromBalanceLog(l *ledger.BalanceChangeLog) *BalanceLogResponse {
	return &BalanceLogResponse{
		ID:           l.ID(),
		Amount:       l.Amount(),
		BeforeAmount: l.BeforeAmount(),
		AfterAmount:  l.AfterAmount(),
		Code:         l.Code().String(),
		Note:         l.Note(),
		RefID:        l.RefID(),
		CreatedAt:    l.CreatedAt(),
	}
}
