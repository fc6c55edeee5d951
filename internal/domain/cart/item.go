package cart

import (
	"math"
	"time"

	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrCartItemNotFound = errs.NewDomain("CART001", "cart item not found")

// Item is one product option a user intends to buy. A user holds at most one item per option;
// adding the same option again grows the quantity.
type Item struct {
	id        uuid.UUID
	userID    uuid.UUID
	variantID uuid.UUID
	quantity  int64
	createdAt time.Time
	updatedAt time.Time
}

func NewItem(userID, variantID uuid.UUID, quantity int64, now time.Time) (*Item, error) {
	if quantity <= 0 {
		return nil, errs.Wrapf(inventory.ErrInvalidQuantity, "cart quantity %d", quantity)
	}
	return &Item{
		id:        uuid.New(),
		userID:    userID,
		variantID: variantID,
		quantity:  quantity,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructItem(id, userID, variantID uuid.UUID, quantity int64, createdAt, updatedAt time.Time) (*Item, error) {
	if quantity <= 0 {
		return nil, errs.Invariantf("cart item %s has non-positive quantity %d", id, quantity)
	}
	return &Item{
		id:        id,
		userID:    userID,
		variantID: variantID,
		quantity:  quantity,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// Add merges qty more units into the item.
func (i *Item) Add(qty int64, now time.Time) error {
	if qty <= 0 {
		return errs.Wrapf(inventory.ErrInvalidQuantity, "cart quantity %d", qty)
	}
	if i.quantity > math.MaxInt64-qty {
		return errs.Wrapf(inventory.ErrInvalidQuantity, "cart quantity %d cannot absorb %d", i.quantity, qty)
	}
	i.quantity += qty
	i.updatedAt = now
	return nil
}

func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.userID == userID
}

func (i *Item) ID() uuid.UUID        { return i.id }
func (i *Item) UserID() uuid.UUID    { return i.userID }
func (i *Item) VariantID() uuid.UUID { return i.variantID }
func (i *Item) Quantity() int64      { return i.quantity }
func (i *Item) CreatedAt() time.Time { return i.createdAt }
func (i *Item) UpdatedAt() time.Time { return i.updatedAt }
