package queries

//go:generate mockgen -source=balance.go -destination=../../../tests/mock/queries/balance.go -package=mock_queries

import (
	"context"

	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type BalanceQueries interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*BalanceView, error)
	ListBalanceLogs(ctx context.Context, filter shared.BalanceLogFilter) (*BalanceLogPage, error)
}

type balanceQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewBalanceQueries(uow shared.UnitOfWork) BalanceQueries {
	return &balanceQueriesImpl{uow: uow}
}

func (q *balanceQueriesImpl) GetBalance(ctx context.Context, userID uuid.UUID) (*BalanceView, error) {
	var view *BalanceView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		a, err := tx.Accounts().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		view = &BalanceView{UserID: a.UserID(), Name: a.Name(), Balance: a.Balance(), UpdatedAt: a.UpdatedAt()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListBalanceLogs lists newest first. The user must exist, an unknown user is not an empty ledger.
func (q *balanceQueriesImpl) ListBalanceLogs(ctx context.Context, filter shared.BalanceLogFilter) (*BalanceLogPage, error) {
	filter = filter.Normalize()

	var (
		logs  []*ledger.BalanceChangeLog
		total int
	)
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Accounts().FindByID(ctx, filter.UserID); err != nil {
			return err
		}
		var err error
		logs, total, err = tx.BalanceLogs().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	page := &BalanceLogPage{Items: make([]BalanceLogView, len(logs)), Page: filter.Page, Size: filter.Size, Total: total}
	for i, l := range logs {
		page.Items[i] = BalanceLogView{
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
	return page, nil
}
