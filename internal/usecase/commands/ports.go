package commands

import (
	"context"
	"errors"
	"time"

	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/pkg/metrics"

	"github.com/google/uuid"
)

// EventPublisher delivers relayed outbox events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

type OrderLineInput struct {
	VariantID uuid.UUID
	Quantity  int64
}

type CreateOrderInput struct {
	UserID uuid.UUID
	Lines  []OrderLineInput
}

type ProcessPaymentInput struct {
	OrderID      uuid.UUID
	UserID       uuid.UUID
	UserCouponID *uuid.UUID
}

type CancelOrderInput struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
}

type IssueCouponInput struct {
	UserID   uuid.UUID
	CouponID uuid.UUID
}

type BalanceInput struct {
	UserID uuid.UUID
	Amount int64
	Note   *string
	RefID  *string
}

type AddToCartInput struct {
	UserID    uuid.UUID
	VariantID uuid.UUID
	Quantity  int64
}

type RemoveFromCartInput struct {
	UserID uuid.UUID
	ItemID uuid.UUID
}

type SweepResult struct {
	Expired int
	Skipped int
	Failed  int
}

// outcome maps a command error to a low-cardinality metrics label.
func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	if code := errs.CodeOf(err); code != "" {
		return code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return metrics.OutcomeError
}

func observe(rec metrics.Recorder, name string, start time.Time, err error) {
	rec.ObserveCommand(name, outcome(err), time.Since(start))
}
