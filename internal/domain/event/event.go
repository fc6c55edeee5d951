package event

import (
	"encoding/json"
	"time"

	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated   = "OrderCreated"
	TypeOrderPaid      = "OrderPaid"
	TypeOrderCancelled = "OrderCancelled"
	TypeOrderExpired   = "OrderExpired"
	TypeCouponIssued   = "CouponIssued"
	TypeBalanceChanged = "BalanceChanged"
)

const (
	TopicOrders  = "commerce.orders"
	TopicCoupons = "commerce.coupons"
	TopicLedger  = "commerce.ledger"
)

const envelopeVersion = 1

// Envelope is the wire format published to the broker.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// Outbox is an event recorded in the same transaction as the state change it describes.
type Outbox struct {
	ID          uuid.UUID
	Topic       string
	Key         string
	Type        string
	Payload     []byte
	OccurredAt  time.Time
	PublishedAt *time.Time
}

func NewOutbox(topic, key, eventType string, payload any, now time.Time) (Outbox, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Outbox{}, errs.Wrap(err, "marshal event payload")
	}
	return Outbox{
		ID:         uuid.New(),
		Topic:      topic,
		Key:        key,
		Type:       eventType,
		Payload:    b,
		OccurredAt: now,
	}, nil
}

func (o Outbox) Envelope(producer string) ([]byte, error) {
	b, err := json.Marshal(Envelope{
		EventID:       o.ID.String(),
		EventType:     o.Type,
		EventVersion:  envelopeVersion,
		OccurredAt:    o.OccurredAt,
		Producer:      producer,
		CorrelationID: o.Key,
		Payload:       o.Payload,
	})
	if err != nil {
		return nil, errs.Wrap(err, "marshal event envelope")
	}
	return b, nil
}

// ---- payloads ----

type LineQty struct {
	VariantID string `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
}

type OrderCreatedPayload struct {
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	Lines       []LineQty `json:"lines"`
	TotalAmount int64     `json:"total_amount"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type OrderPaidPayload struct {
	OrderID        string  `json:"order_id"`
	UserID         string  `json:"user_id"`
	CouponID       *string `json:"coupon_id,omitempty"`
	UserCouponID   *string `json:"user_coupon_id,omitempty"`
	TotalAmount    int64   `json:"total_amount"`
	DiscountAmount int64   `json:"discount_amount"`
	FinalAmount    int64   `json:"final_amount"`
}

// used for both cancellation and expiry
type OrderReleasedPayload struct {
	OrderID string    `json:"order_id"`
	UserID  string    `json:"user_id"`
	Lines   []LineQty `json:"lines"`
}

type CouponIssuedPayload struct {
	UserCouponID   string `json:"user_coupon_id"`
	CouponID       string `json:"coupon_id"`
	UserID         string `json:"user_id"`
	IssuedQuantity int    `json:"issued_quantity"`
}

type BalanceChangedPayload struct {
	LogID        string `json:"log_id"`
	UserID       string `json:"user_id"`
	Code         string `json:"code"`
	Amount       int64  `json:"amount"`
	BeforeAmount int64  `json:"before_amount"`
	AfterAmount  int64  `json:"after_amount"`
}
