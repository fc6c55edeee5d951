//go:build unit || e2e

package builder

import (
	"time"

	"commerce-core/internal/domain/coupon"

	"github.com/google/uuid"
)

type CouponBuilder struct {
	ID             uuid.UUID
	Name           string
	DiscountRate   int
	TotalQuantity  int
	IssuedQuantity int
	ExpiresAt      time.Time
	Now            time.Time
}

func NewCouponBuilder() *CouponBuilder {
	return &CouponBuilder{
		ID:            uuid.New(),
		Name:          "WELCOME10",
		DiscountRate:  10,
		TotalQuantity: 100,
		ExpiresAt:     BaseTime.Add(7 * 24 * time.Hour),
		Now:           BaseTime,
	}
}

func (c *CouponBuilder) With(mutate func(*CouponBuilder)) *CouponBuilder {
	mutate(c)
	return c
}

func (c *CouponBuilder) BuildDomain() (*coupon.Coupon, error) {
	return coupon.ReconstructCoupon(c.ID, c.Name, c.DiscountRate, c.TotalQuantity, c.IssuedQuantity, c.ExpiresAt, c.Now, c.Now)
}

func (c *CouponBuilder) MustBuild() *coupon.Coupon {
	cp, err := c.BuildDomain()
	if err != nil {
		panic(err)
	}
	return cp
}
