package order

import (
	"math"
	"time"

	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

const DefaultPaymentWindow = 10 * time.Minute

var (
	ErrOrderNotFound        = errs.NewDomain("O002", "order not found")
	ErrOrderExpired         = errs.NewDomain("O003", "order payment window has expired")
	ErrAlreadyPaid          = errs.NewDomain("O004", "order is already paid")
	ErrInvalidOrderStatus   = errs.NewDomain("O005", "order cannot be paid in its current status")
	ErrInvalidTransition    = errs.NewDomain("O006", "order status transition is not allowed")
	ErrNotYetExpired        = errs.NewDomain("O008", "order payment window has not passed yet")
	ErrCouponAlreadyApplied = errs.NewDomain("O009", "a coupon is already applied to this order")
	ErrEmptyOrder           = errs.NewDomain("O010", "order must contain at least one line")
	ErrAmountOverflow       = errs.NewDomain("O012", "order amount is out of range")
)

type Order struct {
	id             uuid.UUID
	userID         uuid.UUID
	couponID       *uuid.UUID
	userCouponID   *uuid.UUID
	totalAmount    int64
	discountAmount int64
	finalAmount    int64
	status         Status
	lines          []Line
	createdAt      time.Time
	paidAt         *time.Time
	expiresAt      time.Time
	updatedAt      time.Time
}

// New creates a PENDING order whose total is the sum of the line subtotals and which must be paid within window.
func New(userID uuid.UUID, lines []Line, now time.Time, window time.Duration) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if window <= 0 {
		return nil, errs.Invariantf("payment window must be positive: %s", window)
	}

	id := uuid.New()
	owned := make([]Line, len(lines))
	var total int64
	for i, l := range lines {
		l.orderID = id
		owned[i] = l
		if total > math.MaxInt64-l.subtotal {
			return nil, errs.Wrapf(ErrAmountOverflow, "order total exceeds %d", int64(math.MaxInt64))
		}
		total += l.subtotal
	}

	o := &Order{
		id:          id,
		userID:      userID,
		totalAmount: total,
		finalAmount: total,
		status:      StatusPending,
		lines:       owned,
		createdAt:   now,
		expiresAt:   now.Add(window),
		updatedAt:   now,
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func Reconstruct(
	id, userID uuid.UUID,
	couponID, userCouponID *uuid.UUID,
	totalAmount, discountAmount, finalAmount int64,
	status Status,
	lines []Line,
	createdAt time.Time,
	paidAt *time.Time,
	expiresAt, updatedAt time.Time,
) (*Order, error) {
	o := &Order{
		id:             id,
		userID:         userID,
		couponID:       couponID,
		userCouponID:   userCouponID,
		totalAmount:    totalAmount,
		discountAmount: discountAmount,
		finalAmount:    finalAmount,
		status:         status,
		lines:          lines,
		createdAt:      createdAt,
		paidAt:         paidAt,
		expiresAt:      expiresAt,
		updatedAt:      updatedAt,
	}
	if !status.IsValid() {
		return nil, errs.Invariantf("order %s has unknown status %q", id, status)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Order) validate() error {
	if o.totalAmount < 0 || o.discountAmount < 0 || o.finalAmount < 0 {
		return errs.Invariantf("order %s amounts must not be negative: total=%d discount=%d final=%d",
			o.id, o.totalAmount, o.discountAmount, o.finalAmount)
	}
	if o.totalAmount-o.discountAmount != o.finalAmount {
		return errs.Invariantf("order %s: total(%d) - discount(%d) != final(%d)",
			o.id, o.totalAmount, o.discountAmount, o.finalAmount)
	}
	if (o.couponID == nil) != (o.userCouponID == nil) {
		return errs.Invariantf("order %s: coupon and issued coupon must be set together", o.id)
	}
	if !o.expiresAt.After(o.createdAt) {
		return errs.Invariantf("order %s: expiresAt must be after createdAt", o.id)
	}
	return nil
}

// CanPay reports whether the order is PENDING and still inside its payment window.
func (o *Order) CanPay(now time.Time) bool {
	return o.status == StatusPending && !now.After(o.expiresAt)
}

func (o *Order) IsOverdue(now time.Time) bool {
	return o.status == StatusPending && now.After(o.expiresAt)
}

func (o *Order) Pay(now time.Time) error {
	if o.status == StatusPaid {
		return ErrAlreadyPaid
	}
	if o.status != StatusPending {
		return errs.Wrapf(ErrInvalidTransition, "%s -> %s", o.status, StatusPaid)
	}
	if now.After(o.expiresAt) {
		return ErrOrderExpired
	}
	if err := o.transition(StatusPaid, now); err != nil {
		return err
	}
	paidAt := now
	o.paidAt = &paidAt
	return nil
}

func (o *Order) Cancel(now time.Time) error {
	return o.transition(StatusCancelled, now)
}

// Expire is allowed only once the payment window is over.
func (o *Order) Expire(now time.Time) error {
	if o.status != StatusPending {
		return errs.Wrapf(ErrInvalidTransition, "%s -> %s", o.status, StatusExpired)
	}
	if !now.After(o.expiresAt) {
		return ErrNotYetExpired
	}
	return o.transition(StatusExpired, now)
}

// ApplyCoupon records the discount granted by userCouponID, an issuance of couponID. Only one coupon per order.
func (o *Order) ApplyCoupon(couponID, userCouponID uuid.UUID, discount int64, now time.Time) error {
	if o.status != StatusPending {
		return errs.Wrapf(ErrInvalidTransition, "cannot apply coupon to %s order", o.status)
	}
	if o.userCouponID != nil {
		return ErrCouponAlreadyApplied
	}
	if discount < 0 || discount > o.totalAmount {
		return errs.Invariantf("order %s: discount %d out of range [0, %d]", o.id, discount, o.totalAmount)
	}

	o.couponID = &couponID
	o.userCouponID = &userCouponID
	o.discountAmount = discount
	o.finalAmount = o.totalAmount - discount
	o.updatedAt = now
	return o.validate()
}

func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.userID == userID
}

func (o *Order) transition(next Status, now time.Time) error {
	if !o.status.CanTransitionTo(next) {
		return errs.Wrapf(ErrInvalidTransition, "%s -> %s", o.status, next)
	}
	o.status = next
	o.updatedAt = now
	return nil
}

func (o *Order) ID() uuid.UUID            { return o.id }
func (o *Order) UserID() uuid.UUID        { return o.userID }
func (o *Order) CouponID() *uuid.UUID     { return o.couponID }
func (o *Order) UserCouponID() *uuid.UUID { return o.userCouponID }
func (o *Order) TotalAmount() int64       { return o.totalAmount }
func (o *Order) DiscountAmount() int64    { return o.discountAmount }
func (o *Order) FinalAmount() int64       { return o.finalAmount }
func (o *Order) Status() Status           { return o.status }
func (o *Order) CreatedAt() time.Time     { return o.createdAt }
func (o *Order) PaidAt() *time.Time       { return o.paidAt }
func (o *Order) ExpiresAt() time.Time     { return o.expiresAt }
func (o *Order) UpdatedAt() time.Time     { return o.updatedAt }

func (o *Order) Lines() []Line {
	out := make([]Line, len(o.lines))
	copy(out, o.lines)
	return out
}
