package commands

//go:generate mockgen -source=balance.go -destination=../../../tests/mock/commands/balance.go -package=mock_commands

import (
	"context"
	"log/slog"
	"time"

	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/metrics"
	"commerce-core/internal/usecase/shared"
)

type BalanceCommands interface {
	ChargeBalance(ctx context.Context, in BalanceInput) (*ledger.BalanceChangeLog, error)
	// AdjustBalance applies a signed operator correction
	AdjustBalance(ctx context.Context, in BalanceInput) (*ledger.BalanceChangeLog, error)
}

type balanceCommandsImpl struct {
	uow     shared.UnitOfWork
	clock   clock.Clock
	metrics metrics.Recorder
	logger  *slog.Logger
}

func NewBalanceCommands(uow shared.UnitOfWork, clock clock.Clock, rec metrics.Recorder, logger *slog.Logger) BalanceCommands {
	return &balanceCommandsImpl{uow: uow, clock: clock, metrics: rec, logger: logger}
}

type balanceOp func(a *ledger.Account, amount int64, note, refID *string, now time.Time) (*ledger.BalanceChangeLog, error)

func (u *balanceCommandsImpl) ChargeBalance(ctx context.Context, in BalanceInput) (*ledger.BalanceChangeLog, error) {
	return u.apply(ctx, "charge_balance", in, (*ledger.Account).Charge)
}

func (u *balanceCommandsImpl) AdjustBalance(ctx context.Context, in BalanceInput) (*ledger.BalanceChangeLog, error) {
	return u.apply(ctx, "adjust_balance", in, (*ledger.Account).Adjust)
}

func (u *balanceCommandsImpl) apply(ctx context.Context, name string, in BalanceInput, op balanceOp) (entry *ledger.BalanceChangeLog, err error) {
	start := time.Now()
	defer func() { observe(u.metrics, name, start, err) }()

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		acc, err := tx.Accounts().FindByIDForUpdate(ctx, in.UserID)
		if err != nil {
			return err
		}
		log, err := op(acc, in.Amount, in.Note, in.RefID, u.clock.Now())
		if err != nil {
			return err
		}
		if err := tx.Accounts().Save(ctx, acc); err != nil {
			return err
		}
		if err := tx.BalanceLogs().Append(ctx, log); err != nil {
			return err
		}
		ev, err := balanceChangedEvent(log)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Append(ctx, ev); err != nil {
			return err
		}
		entry = log
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("balance changed", "user_id", in.UserID, "code", entry.Code(), "amount", entry.Amount(), "after", entry.AfterAmount())
	return entry, nil
}
