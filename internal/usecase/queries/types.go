package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type OrderLineView struct {
	ID          uuid.UUID
	VariantID   uuid.UUID
	ProductName string
	UnitPrice   int64
	Quantity    int64
	Subtotal    int64
}

type OrderView struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	CouponID       *uuid.UUID
	UserCouponID   *uuid.UUID
	Status         string
	TotalAmount    int64
	DiscountAmount int64
	FinalAmount    int64
	Lines          []OrderLineView
	CreatedAt      time.Time
	PaidAt         *time.Time
	ExpiresAt      time.Time
	UpdatedAt      time.Time
}

type OrderPage struct {
	Items []OrderView
	// NextCursor is empty on the last page
	NextCursor string
}

type BalanceView struct {
	UserID    uuid.UUID
	Name      string
	Balance   int64
	UpdatedAt time.Time
}

type BalanceLogView struct {
	ID           uuid.UUID
	Amount       int64
	BeforeAmount int64
	AfterAmount  int64
	Code         string
	Note         *string
	RefID        *string
	CreatedAt    time.Time
}

type BalanceLogPage struct {
	Items []BalanceLogView
	Page  int
	Size  int
	Total int
}

type UserCouponView struct {
	ID           uuid.UUID
	CouponID     uuid.UUID
	CouponName   string
	DiscountRate int
	Status       string
	OrderID      *uuid.UUID
	IssuedAt     time.Time
	UsedAt       *time.Time
	ExpiresAt    time.Time
}

type ProductOptionView struct {
	ID             uuid.UUID
	Name           string
	ExtraPrice     int64
	UnitPrice      int64
	AvailableStock int64
}

type ProductView struct {
	ID          uuid.UUID
	Name        string
	Price       int64
	IsAvailable bool
	Options     []ProductOptionView
}

type CartItemView struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	VariantID   uuid.UUID
	VariantName string
	UnitPrice   int64
	Quantity    int64
	Subtotal    int64
	// AvailableStock lets the client flag items that can no longer be ordered in full
	AvailableStock int64
	AddedAt        time.Time
}

type CartView struct {
	Items       []CartItemView
	TotalAmount int64
}
