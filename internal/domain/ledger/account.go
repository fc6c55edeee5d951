package ledger

import (
	"math"
	"time"

	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound        = errs.NewDomain("U001", "user not found")
	ErrInsufficientBalance = errs.NewDomain("PAY001", "insufficient balance")
	ErrNegativeBalance     = errs.NewDomain("PAY003", "balance cannot become negative")
	ErrInvalidAmount       = errs.NewDomain("PAY004", "invalid amount")
)

// Account is a user's balance. Every successful mutation returns exactly one change log entry
// and a failed one leaves the balance untouched.
type Account struct {
	userID    uuid.UUID
	name      string
	balance   int64
	createdAt time.Time
	updatedAt time.Time
}

func NewAccount(userID uuid.UUID, name string, now time.Time) *Account {
	return &Account{
		userID:    userID,
		name:      name,
		createdAt: now,
		updatedAt: now,
	}
}

func ReconstructAccount(userID uuid.UUID, name string, balance int64, createdAt, updatedAt time.Time) (*Account, error) {
	if balance < 0 {
		return nil, errs.Invariantf("account %s has negative balance %d", userID, balance)
	}
	return &Account{
		userID:    userID,
		name:      name,
		balance:   balance,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (a *Account) Charge(amount int64, note, refID *string, now time.Time) (*BalanceChangeLog, error) {
	if amount <= 0 {
		return nil, errs.Wrapf(ErrInvalidAmount, "charge amount must be positive: %d", amount)
	}
	return a.apply(amount, CodeCharge, note, refID, now)
}

// Deduct records the debit as a negative amount with code PAYMENT.
func (a *Account) Deduct(amount int64, note, refID *string, now time.Time) (*BalanceChangeLog, error) {
	if amount <= 0 {
		return nil, errs.Wrapf(ErrInvalidAmount, "deduct amount must be positive: %d", amount)
	}
	if a.balance < amount {
		return nil, errs.Wrapf(ErrInsufficientBalance, "balance %d, requested %d", a.balance, amount)
	}
	return a.apply(-amount, CodePayment, note, refID, now)
}

func (a *Account) Refund(amount int64, note, refID *string, now time.Time) (*BalanceChangeLog, error) {
	if amount <= 0 {
		return nil, errs.Wrapf(ErrInvalidAmount, "refund amount must be positive: %d", amount)
	}
	return a.apply(amount, CodeRefund, note, refID, now)
}

// Adjust is a signed correction. A result below zero is rejected and nothing is changed or logged.
func (a *Account) Adjust(amount int64, note, refID *string, now time.Time) (*BalanceChangeLog, error) {
	if amount == 0 {
		return nil, errs.Wrap(ErrInvalidAmount, "adjust amount must not be zero")
	}
	if a.balance+amount < 0 {
		return nil, errs.Wrapf(ErrNegativeBalance, "balance %d, adjustment %d", a.balance, amount)
	}
	return a.apply(amount, CodeAdjust, note, refID, now)
}

func (a *Account) apply(amount int64, code Code, note, refID *string, now time.Time) (*BalanceChangeLog, error) {
	before := a.balance
	if amount > 0 && before > math.MaxInt64-amount {
		return nil, errs.Wrapf(ErrInvalidAmount, "balance %d cannot absorb %d", before, amount)
	}
	log, err := NewBalanceChangeLog(a.userID, amount, before, before+amount, code, note, refID, now)
	if err != nil {
		return nil, err
	}
	a.balance = log.AfterAmount()
	a.updatedAt = now
	return log, nil
}

func (a *Account) UserID() uuid.UUID    { return a.userID }
func (a *Account) Name() string         { return a.name }
func (a *Account) Balance() int64       { return a.balance }
func (a *Account) CreatedAt() time.Time { return a.createdAt }
func (a *Account) UpdatedAt() time.Time { return a.updatedAt }
