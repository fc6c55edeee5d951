package ledger

import (
	"time"

	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

type Code string

const (
	CodeCharge  Code = "CHARGE"
	CodePayment Code = "PAYMENT"
	CodeRefund  Code = "REFUND"
	CodeAdjust  Code = "ADJUST"
)

var ErrInvalidCode = errs.NewDomain("PAY005", "unknown balance change code")

func (c Code) String() string { return string(c) }

func (c Code) IsValid() bool {
	switch c {
	case CodeCharge, CodePayment, CodeRefund, CodeAdjust:
		return true
	default:
		return false
	}
}

func ParseCode(s string) (Code, error) {
	code := Code(s)
	if !code.IsValid() {
		return "", ErrInvalidCode
	}
	return code, nil
}

// BalanceChangeLog is one immutable ledger entry. It has no mutators; repositories only append and list.
type BalanceChangeLog struct {
	id           uuid.UUID
	userID       uuid.UUID
	amount       int64
	beforeAmount int64
	afterAmount  int64
	code         Code
	note         *string
	refID        *string
	createdAt    time.Time
}

func NewBalanceChangeLog(userID uuid.UUID, amount, beforeAmount, afterAmount int64, code Code, note, refID *string, now time.Time) (*BalanceChangeLog, error) {
	return ReconstructBalanceChangeLog(uuid.New(), userID, amount, beforeAmount, afterAmount, code, note, refID, now)
}

func ReconstructBalanceChangeLog(id, userID uuid.UUID, amount, beforeAmount, afterAmount int64, code Code, note, refID *string, createdAt time.Time) (*BalanceChangeLog, error) {
	switch {
	case amount == 0:
		return nil, errs.Invariant("balance change amount must not be zero")
	case beforeAmount < 0 || afterAmount < 0:
		return nil, errs.Invariantf("balance must not be negative: before=%d after=%d", beforeAmount, afterAmount)
	case beforeAmount+amount != afterAmount:
		return nil, errs.Invariantf("before(%d) + amount(%d) != after(%d)", beforeAmount, amount, afterAmount)
	case !code.IsValid():
		return nil, errs.Invariantf("unknown balance change code %q", code)
	}
	return &BalanceChangeLog{
		id:           id,
		userID:       userID,
		amount:       amount,
		beforeAmount: beforeAmount,
		afterAmount:  afterAmount,
		code:         code,
		note:         note,
		refID:        refID,
		createdAt:    createdAt,
	}, nil
}

func (l *BalanceChangeLog) ID() uuid.UUID        { return l.id }
func (l *BalanceChangeLog) UserID() uuid.UUID    { return l.userID }
func (l *BalanceChangeLog) Amount() int64        { return l.amount }
func (l *BalanceChangeLog) BeforeAmount() int64  { return l.beforeAmount }
func (l *BalanceChangeLog) AfterAmount() int64   { return l.afterAmount }
func (l *BalanceChangeLog) Code() Code           { return l.code }
func (l *BalanceChangeLog) Note() *string        { return l.note }
func (l *BalanceChangeLog) RefID() *string       { return l.refID }
func (l *BalanceChangeLog) CreatedAt() time.Time { return l.createdAt }
