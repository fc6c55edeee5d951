package commands

import (
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/event"
	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/domain/order"

	"github.com/google/uuid"
)

func lineQuantities(o *order.Order) []event.LineQty {
	lines := o.Lines()
	out := make([]event.LineQty, len(lines))
	for i, l := range lines {
		out[i] = event.LineQty{VariantID: l.VariantID().String(), Quantity: l.Quantity()}
	}
	return out
}

func orderCreatedEvent(o *order.Order, now time.Time) (event.Outbox, error) {
	return event.NewOutbox(event.TopicOrders, o.ID().String(), event.TypeOrderCreated, event.OrderCreatedPayload{
		OrderID:     o.ID().String(),
		UserID:      o.UserID().String(),
		Lines:       lineQuantities(o),
		TotalAmount: o.TotalAmount(),
		ExpiresAt:   o.ExpiresAt(),
	}, now)
}

func orderPaidEvent(o *order.Order, now time.Time) (event.Outbox, error) {
	return event.NewOutbox(event.TopicOrders, o.ID().String(), event.TypeOrderPaid, event.OrderPaidPayload{
		OrderID:        o.ID().String(),
		UserID:         o.UserID().String(),
		CouponID:       idString(o.CouponID()),
		UserCouponID:   idString(o.UserCouponID()),
		TotalAmount:    o.TotalAmount(),
		DiscountAmount: o.DiscountAmount(),
		FinalAmount:    o.FinalAmount(),
	}, now)
}

// orderReleasedEvent covers cancellation and expiry; eventType tells them apart.
func orderReleasedEvent(o *order.Order, eventType string, now time.Time) (event.Outbox, error) {
	return event.NewOutbox(event.TopicOrders, o.ID().String(), eventType, event.OrderReleasedPayload{
		OrderID: o.ID().String(),
		UserID:  o.UserID().String(),
		Lines:   lineQuantities(o),
	}, now)
}

func couponIssuedEvent(uc *coupon.UserCoupon, issued int, now time.Time) (event.Outbox, error) {
	return event.NewOutbox(event.TopicCoupons, uc.CouponID().String(), event.TypeCouponIssued, event.CouponIssuedPayload{
		UserCouponID:   uc.ID().String(),
		CouponID:       uc.CouponID().String(),
		UserID:         uc.UserID().String(),
		IssuedQuantity: issued,
	}, now)
}

func balanceChangedEvent(l *ledger.BalanceChangeLog) (event.Outbox, error) {
	return event.NewOutbox(event.TopicLedger, l.UserID().String(), event.TypeBalanceChanged, event.BalanceChangedPayload{
		LogID:        l.ID().String(),
		UserID:       l.UserID().String(),
		Code:         l.Code().String(),
		Amount:       l.Amount(),
		BeforeAmount: l.BeforeAmount(),
		AfterAmount:  l.AfterAmount(),
	}, l.CreatedAt())
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
