package request

import (
	"strings"

	"commerce-core/internal/domain/coupon"
)

type ListUserCouponsQuery struct {
	Status string `form:"status"`
}

func (q ListUserCouponsQuery) ParseStatus() (*coupon.UserCouponStatus, error) {
	if q.Status == "" {
		return nil, nil
	}
	status, err := coupon.ParseUserCouponStatus(strings.ToUpper(q.Status))
	if err != nil {
		return nil, err
	}
	return &status, nil
}
