package coupon

import (
	"time"

	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

type UserCouponStatus string

const (
	UserCouponAvailable UserCouponStatus = "AVAILABLE"
	UserCouponUsed      UserCouponStatus = "USED"
	UserCouponExpired   UserCouponStatus = "EXPIRED"
)

var ErrInvalidUserCouponStatus = errs.NewDomain("C006", "unknown user coupon status")

func ParseUserCouponStatus(s string) (UserCouponStatus, error) {
	switch st := UserCouponStatus(s); st {
	case UserCouponAvailable, UserCouponUsed, UserCouponExpired:
		return st, nil
	default:
		return "", ErrInvalidUserCouponStatus
	}
}

// UserCoupon is the issuance record of a coupon to one user. At most one exists per (user, coupon).
type UserCoupon struct {
	id        uuid.UUID
	userID    uuid.UUID
	couponID  uuid.UUID
	orderID   *uuid.UUID
	issuedAt  time.Time
	usedAt    *time.Time
	expiresAt time.Time
}

// IssueUserCoupon takes one unit of c's quota and returns the record granting it to userID.
func IssueUserCoupon(userID uuid.UUID, c *Coupon, now time.Time) (*UserCoupon, error) {
	if _, err := c.Issue(now); err != nil {
		return nil, err
	}
	return &UserCoupon{
		id:        uuid.New(),
		userID:    userID,
		couponID:  c.ID(),
		issuedAt:  now,
		expiresAt: c.ExpiresAt(),
	}, nil
}

func ReconstructUserCoupon(id, userID, couponID uuid.UUID, orderID *uuid.UUID, issuedAt time.Time, usedAt *time.Time, expiresAt time.Time) (*UserCoupon, error) {
	if (orderID == nil) != (usedAt == nil) {
		return nil, errs.Invariantf("user coupon %s: order id and used at must be set together", id)
	}
	return &UserCoupon{
		id:        id,
		userID:    userID,
		couponID:  couponID,
		orderID:   orderID,
		issuedAt:  issuedAt,
		usedAt:    usedAt,
		expiresAt: expiresAt,
	}, nil
}

func (u *UserCoupon) Use(orderID uuid.UUID, now time.Time) error {
	if u.usedAt != nil {
		return ErrAlreadyUsed
	}
	if now.After(u.expiresAt) {
		return ErrCouponExpired
	}
	usedAt := now
	u.orderID = &orderID
	u.usedAt = &usedAt
	return nil
}

func (u *UserCoupon) Status(now time.Time) UserCouponStatus {
	switch {
	case u.usedAt != nil:
		return UserCouponUsed
	case now.After(u.expiresAt):
		return UserCouponExpired
	default:
		return UserCouponAvailable
	}
}

func (u *UserCoupon) IsOwnedBy(userID uuid.UUID) bool {
	return u.userID == userID
}

func (u *UserCoupon) ID() uuid.UUID        { return u.id }
func (u *UserCoupon) UserID() uuid.UUID    { return u.userID }
func (u *UserCoupon) CouponID() uuid.UUID  { return u.couponID }
func (u *UserCoupon) OrderID() *uuid.UUID  { return u.orderID }
func (u *UserCoupon) IssuedAt() time.Time  { return u.issuedAt }
func (u *UserCoupon) UsedAt() *time.Time   { return u.usedAt }
func (u *UserCoupon) ExpiresAt() time.Time { return u.expiresAt }
