package queries

//go:generate mockgen -source=coupons.go -destination=../../../tests/mock/queries/coupons.go -package=mock_queries

import (
	"context"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type CouponQueries interface {
	// ListUserCoupons filters on the status derived at the current time when status is set
	ListUserCoupons(ctx context.Context, userID uuid.UUID, status *coupon.UserCouponStatus) ([]UserCouponView, error)
}

type couponQueriesImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewCouponQueries(uow shared.UnitOfWork, clock clock.Clock) CouponQueries {
	return &couponQueriesImpl{uow: uow, clock: clock}
}

func (q *couponQueriesImpl) ListUserCoupons(ctx context.Context, userID uuid.UUID, status *coupon.UserCouponStatus) ([]UserCouponView, error) {
	now := q.clock.Now()
	var views []UserCouponView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		views = nil
		issued, err := tx.UserCoupons().ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		coupons := make(map[uuid.UUID]*coupon.Coupon)
		for _, uc := range issued {
			st := uc.Status(now)
			if status != nil && st != *status {
				continue
			}
			c, ok := coupons[uc.CouponID()]
			if !ok {
				if c, err = tx.Coupons().FindByID(ctx, uc.CouponID()); err != nil {
					return err
				}
				coupons[uc.CouponID()] = c
			}
			views = append(views, UserCouponView{
				ID:           uc.ID(),
				CouponID:     uc.CouponID(),
				CouponName:   c.Name(),
				DiscountRate: c.DiscountRate(),
				Status:       string(st),
				OrderID:      uc.OrderID(),
				IssuedAt:     uc.IssuedAt(),
				UsedAt:       uc.UsedAt(),
				ExpiresAt:    uc.ExpiresAt(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
