package coupon

import (
	"strings"
	"time"

	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrCouponSoldOut  = errs.NewDomain("C001", "coupon quota is exhausted")
	ErrCouponNotFound = errs.NewDomain("C002", "coupon not found")
	ErrCouponExpired  = errs.NewDomain("C003", "coupon has expired")
	ErrAlreadyUsed    = errs.NewDomain("C004", "coupon has already been used")
	ErrAlreadyIssued  = errs.NewDomain("C005", "coupon has already been issued to this user")
)

const (
	MinDiscountRate = 1
	MaxDiscountRate = 100
)

// Coupon is a promotion with a finite issuance quota. issuedQuantity never exceeds totalQuantity.
type Coupon struct {
	id             uuid.UUID
	name           string
	discountRate   int
	totalQuantity  int
	issuedQuantity int
	expiresAt      time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func NewCoupon(name string, discountRate, totalQuantity int, expiresAt, now time.Time) (*Coupon, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Invariant("coupon name must not be empty")
	}
	c := &Coupon{
		id:            uuid.New(),
		name:          name,
		discountRate:  discountRate,
		totalQuantity: totalQuantity,
		expiresAt:     expiresAt,
		createdAt:     now,
		updatedAt:     now,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func ReconstructCoupon(id uuid.UUID, name string, discountRate, totalQuantity, issuedQuantity int, expiresAt, createdAt, updatedAt time.Time) (*Coupon, error) {
	c := &Coupon{
		id:             id,
		name:           name,
		discountRate:   discountRate,
		totalQuantity:  totalQuantity,
		issuedQuantity: issuedQuantity,
		expiresAt:      expiresAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Coupon) validate() error {
	if c.discountRate < MinDiscountRate || c.discountRate > MaxDiscountRate {
		return errs.Invariantf("coupon discount rate must be in (0, 100]: %d", c.discountRate)
	}
	if c.totalQuantity < 0 {
		return errs.Invariantf("coupon total quantity must not be negative: %d", c.totalQuantity)
	}
	if c.issuedQuantity < 0 || c.issuedQuantity > c.totalQuantity {
		return errs.Invariantf("coupon issued quantity %d out of range [0, %d]", c.issuedQuantity, c.totalQuantity)
	}
	return nil
}

func (c *Coupon) CanIssue(now time.Time) bool {
	return !now.After(c.expiresAt) && c.issuedQuantity < c.totalQuantity
}

// Issue consumes one unit of the quota and returns the new issued count.
// Callers must hold the coupon row exclusively between load and save.
func (c *Coupon) Issue(now time.Time) (int, error) {
	if now.After(c.expiresAt) {
		return c.issuedQuantity, ErrCouponExpired
	}
	if c.issuedQuantity >= c.totalQuantity {
		return c.issuedQuantity, ErrCouponSoldOut
	}
	c.issuedQuantity++
	c.updatedAt = now
	return c.issuedQuantity, nil
}

// Discount is floor(amount * rate / 100). It is computed on the hundreds and the remainder
// separately so amount*rate never has to fit in an int64.
func (c *Coupon) Discount(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	rate := int64(c.discountRate)
	return amount/100*rate + amount%100*rate/100
}

func (c *Coupon) Remaining() int {
	return c.totalQuantity - c.issuedQuantity
}

func (c *Coupon) ID() uuid.UUID        { return c.id }
func (c *Coupon) Name() string         { return c.name }
func (c *Coupon) DiscountRate() int    { return c.discountRate }
func (c *Coupon) TotalQuantity() int   { return c.totalQuantity }
func (c *Coupon) IssuedQuantity() int  { return c.issuedQuantity }
func (c *Coupon) ExpiresAt() time.Time { return c.expiresAt }
func (c *Coupon) CreatedAt() time.Time { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time { return c.updatedAt }
