package shared

import (
	"time"

	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/domain/order"

	"github.com/google/uuid"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// OrderFilter pages newest first. After resumes strictly below the given position.
type OrderFilter struct {
	UserID uuid.UUID
	Status *order.Status
	After  *OrderPosition
	Limit  int
}

// OrderPosition is a (created_at, id) keyset position with microsecond precision.
type OrderPosition struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Admits reports whether o lies strictly past p in newest-first order.
func (p OrderPosition) Admits(o *order.Order) bool {
	at := o.CreatedAt().Truncate(time.Microsecond)
	if !at.Equal(p.CreatedAt) {
		return at.Before(p.CreatedAt)
	}
	return o.ID().String() < p.ID.String()
}

type BalanceLogFilter struct {
	UserID uuid.UUID
	From   *time.Time
	To     *time.Time
	Code   *ledger.Code
	RefID  *string
	Page   int
	Size   int
}

// Normalize applies paging defaults and bounds.
func (f BalanceLogFilter) Normalize() BalanceLogFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Size < 1 {
		f.Size = DefaultPageSize
	}
	if f.Size > MaxPageSize {
		f.Size = MaxPageSize
	}
	return f
}

func (f BalanceLogFilter) Offset() int {
	return (f.Page - 1) * f.Size
}

// Matches is used by stores that filter in process.
func (f BalanceLogFilter) Matches(l *ledger.BalanceChangeLog) bool {
	if l.UserID() != f.UserID {
		return false
	}
	if f.From != nil && l.CreatedAt().Before(*f.From) {
		return false
	}
	if f.To != nil && l.CreatedAt().After(*f.To) {
		return false
	}
	if f.Code != nil && l.Code() != *f.Code {
		return false
	}
	if f.RefID != nil && (l.RefID() == nil || *l.RefID() != *f.RefID) {
		return false
	}
	return true
}
