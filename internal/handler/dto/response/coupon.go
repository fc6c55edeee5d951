package response

import (
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type UserCouponResponse struct {
	ID           uuid.UUID  `json:"id"`
	CouponID     uuid.UUID  `json:"couponId"`
	CouponName   string     `json:"couponName,omitempty"`
	DiscountRate int        `json:"discountRate,omitempty"`
	Status       string     `json:"status"`
	OrderID      *uuid.UUID `json:"orderId,omitempty"`
	IssuedAt     time.Time  `json:"issuedAt"`
	UsedAt       *time.Time `json:"usedAt,omitempty"`
	ExpiresAt    time.Time  `json:"expiresAt"`
}

func FromUserCouponViews(views []queries.UserCouponView) []UserCouponResponse {
	res := make([]UserCouponResponse, 0, len(views))
	_ = copier.Copy(&res, views)
	return res
}

// FromIssuedCoupon renders a coupon that was just issued, which is always AVAILABLE
func FromIssuedCoupon(uc *coupon.UserCoupon) *UserCouponResponse {
	return &UserCouponResponse{
		ID:        uc.ID(),
		CouponID:  uc.CouponID(),
		Status:    string(coupon.UserCouponAvailable),
		OrderID:   uc.OrderID(),
		IssuedAt:  uc.IssuedAt(),
		UsedAt:    uc.UsedAt(),
		ExpiresAt: uc.ExpiresAt(),
	}
}
