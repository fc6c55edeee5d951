package commands

//go:generate mockgen -source=coupons.go -destination=../../../tests/mock/commands/coupons.go -package=mock_commands

import (
	"context"
	"log/slog"
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/pkg/metrics"
	"commerce-core/internal/usecase/shared"
)

type CouponCommands interface {
	IssueCoupon(ctx context.Context, in IssueCouponInput) (*coupon.UserCoupon, error)
}

type couponCommandsImpl struct {
	uow     shared.UnitOfWork
	clock   clock.Clock
	metrics metrics.Recorder
	logger  *slog.Logger
}

func NewCouponCommands(uow shared.UnitOfWork, clock clock.Clock, rec metrics.Recorder, logger *slog.Logger) CouponCommands {
	return &couponCommandsImpl{uow: uow, clock: clock, metrics: rec, logger: logger}
}

// IssueCoupon checks the quota and the per-user duplicate while holding the coupon row lock,
// so both checks see every issuance committed before it.
func (u *couponCommandsImpl) IssueCoupon(ctx context.Context, in IssueCouponInput) (issued *coupon.UserCoupon, err error) {
	start := time.Now()
	defer func() { observe(u.metrics, "issue_coupon", start, err) }()

	var remaining int
	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := u.clock.Now()

		if _, err := tx.Accounts().FindByID(ctx, in.UserID); err != nil {
			return err
		}
		c, err := tx.Coupons().FindByIDForUpdate(ctx, in.CouponID)
		if err != nil {
			return err
		}
		exists, err := tx.UserCoupons().ExistsByUserAndCoupon(ctx, in.UserID, c.ID())
		if err != nil {
			return err
		}
		if exists {
			return errs.Wrapf(coupon.ErrAlreadyIssued, "user %s coupon %s", in.UserID, c.ID())
		}

		uc, err := coupon.IssueUserCoupon(in.UserID, c, now)
		if err != nil {
			return err
		}
		if err := tx.Coupons().Save(ctx, c); err != nil {
			return err
		}
		if err := tx.UserCoupons().Create(ctx, uc); err != nil {
			return err
		}
		ev, err := couponIssuedEvent(uc, c.IssuedQuantity(), now)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Append(ctx, ev); err != nil {
			return err
		}
		issued, remaining = uc, c.Remaining()
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("coupon issued", "coupon_id", in.CouponID, "user_id", in.UserID, "remaining", remaining)
	return issued, nil
}
