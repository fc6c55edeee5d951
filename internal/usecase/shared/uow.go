package shared

import (
	"context"
	"time"

	"commerce-core/internal/domain/cart"
	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/event"
	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/domain/order"
	"commerce-core/internal/domain/product"
	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrReadOnlyTransaction = errs.New("write attempted inside a read-only transaction")

type UnitOfWork interface {
	// Within: all-or-nothing write transaction. Rows loaded with *ForUpdate stay locked until fn returns,
	// and every write made through tx is discarded if fn returns an error.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: consistent multi-table reads; writes are rejected
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Products() ProductRepository
	Variants() VariantRepository
	Orders() OrderRepository
	Coupons() CouponRepository
	UserCoupons() UserCouponRepository
	Accounts() AccountRepository
	BalanceLogs() BalanceLogRepository
	Outbox() OutboxRepository
	CartItems() CartItemRepository
}

// Lock order used by every command so concurrent transactions never wait on each other in a cycle:
// order -> user coupon -> coupon -> account -> variants (ascending id).
// Cart writes lock only the account, which serializes them per user.

type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*product.Product, error)
	// ListAvailable returns products on sale ordered by name, then id
	ListAvailable(ctx context.Context) ([]*product.Product, error)
}

type VariantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*inventory.Variant, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*inventory.Variant, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Variant, error)
	// ListByProducts groups variants by product id, each group ordered by name, then id
	ListByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]*inventory.Variant, error)
	Save(ctx context.Context, v *inventory.Variant) error
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error)
	// Create stores the order together with its lines
	Create(ctx context.Context, o *order.Order) error
	// Save persists status, amounts, coupon and timestamps. Lines are immutable.
	Save(ctx context.Context, o *order.Order) error
	List(ctx context.Context, filter OrderFilter) ([]*order.Order, error)
	// FindOverdueIDs returns PENDING orders whose deadline is before now, oldest first
	FindOverdueIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

type CouponRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error)
	Save(ctx context.Context, c *coupon.Coupon) error
}

type UserCouponRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*coupon.UserCoupon, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*coupon.UserCoupon, error)
	ExistsByUserAndCoupon(ctx context.Context, userID, couponID uuid.UUID) (bool, error)
	// Create fails with coupon.ErrAlreadyIssued when (user, coupon) already exists
	Create(ctx context.Context, uc *coupon.UserCoupon) error
	Save(ctx context.Context, uc *coupon.UserCoupon) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*coupon.UserCoupon, error)
}

type AccountRepository interface {
	FindByID(ctx context.Context, userID uuid.UUID) (*ledger.Account, error)
	FindByIDForUpdate(ctx context.Context, userID uuid.UUID) (*ledger.Account, error)
	Save(ctx context.Context, a *ledger.Account) error
}

// BalanceLogRepository is append-only. It has no update or delete.
type BalanceLogRepository interface {
	Append(ctx context.Context, log *ledger.BalanceChangeLog) error
	List(ctx context.Context, filter BalanceLogFilter) ([]*ledger.BalanceChangeLog, int, error)
}

type OutboxRepository interface {
	Append(ctx context.Context, events ...event.Outbox) error
	// ClaimUnpublished locks up to limit unpublished events, skipping rows locked by other relays
	ClaimUnpublished(ctx context.Context, limit int) ([]event.Outbox, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

type CartItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*cart.Item, error)
	// FindByUserAndVariant returns cart.ErrCartItemNotFound when the user has no item for the option
	FindByUserAndVariant(ctx context.Context, userID, variantID uuid.UUID) (*cart.Item, error)
	// ListByUser returns items oldest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*cart.Item, error)
	Create(ctx context.Context, it *cart.Item) error
	Save(ctx context.Context, it *cart.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}
