package request

import (
	"strings"
	"time"

	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

// Amount sign rules belong to the ledger: charge must be positive, adjust is signed and non-zero.
type BalanceChangeRequest struct {
	Amount int64   `json:"amount"`
	Note   *string `json:"note,omitempty" binding:"omitempty,max=255"`
	RefID  *string `json:"refId,omitempty" binding:"omitempty,max=64"`
}

func (r BalanceChangeRequest) ToInput(userID uuid.UUID) commands.BalanceInput {
	return commands.BalanceInput{
		UserID: userID,
		Amount: r.Amount,
		Note:   trimmed(r.Note),
		RefID:  trimmed(r.RefID),
	}
}

type BalanceLogsQuery struct {
	From  *time.Time `form:"from"`
	To    *time.Time `form:"to"`
	Code  string     `form:"code"`
	RefID string     `form:"refId"`
	Page  int        `form:"page" binding:"omitempty,min=1"`
	Size  int        `form:"size" binding:"omitempty,min=1,max=100"`
}

func (q BalanceLogsQuery) ToFilter(userID uuid.UUID) (shared.BalanceLogFilter, error) {
	f := shared.BalanceLogFilter{
		UserID: userID,
		From:   q.From,
		To:     q.To,
		RefID:  trimmed(&q.RefID),
		Page:   q.Page,
		Size:   q.Size,
	}
	if q.Code != "" {
		code, err := ledger.ParseCode(strings.ToUpper(q.Code))
		if err != nil {
			return shared.BalanceLogFilter{}, err
		}
		f.Code = &code
	}
	return f, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
