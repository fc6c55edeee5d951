package memory

import (
	"context"
	"time"

	"commerce-core/internal/domain/cart"
	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/event"
	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/domain/order"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

const DefaultLockWait = 5 * time.Second

type UnitOfWork struct {
	store    *Store
	lockWait time.Duration
}

// NewUnitOfWork gives every transaction row locks held until commit or rollback and
// writes that only become visible to other transactions at commit.
func NewUnitOfWork(store *Store, lockWait time.Duration) shared.UnitOfWork {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &UnitOfWork{store: store, lockWait: lockWait}
}

func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.run(ctx, false, fn)
}

func (u *UnitOfWork) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.run(ctx, true, fn)
}

func (u *UnitOfWork) run(ctx context.Context, readOnly bool, fn func(ctx context.Context, tx shared.Tx) error) error {
	tx := newMemTx(u.store, readOnly, u.lockWait)
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return tx.commit()
}

type memTx struct {
	store    *Store
	readOnly bool
	lockWait time.Duration
	held     map[string]struct{}

	variants    map[uuid.UUID]inventory.Variant
	orders      map[uuid.UUID]order.Order
	coupons     map[uuid.UUID]coupon.Coupon
	userCoupons map[uuid.UUID]coupon.UserCoupon
	accounts    map[uuid.UUID]ledger.Account
	logs        []*ledger.BalanceChangeLog
	outbox      []event.Outbox
	published   map[uuid.UUID]time.Time
	cartItems   map[uuid.UUID]cart.Item
	cartDeleted map[uuid.UUID]struct{}
}

func newMemTx(store *Store, readOnly bool, lockWait time.Duration) *memTx {
	return &memTx{
		store:       store,
		readOnly:    readOnly,
		lockWait:    lockWait,
		held:        make(map[string]struct{}),
		variants:    make(map[uuid.UUID]inventory.Variant),
		orders:      make(map[uuid.UUID]order.Order),
		coupons:     make(map[uuid.UUID]coupon.Coupon),
		userCoupons: make(map[uuid.UUID]coupon.UserCoupon),
		accounts:    make(map[uuid.UUID]ledger.Account),
		published:   make(map[uuid.UUID]time.Time),
		cartItems:   make(map[uuid.UUID]cart.Item),
		cartDeleted: make(map[uuid.UUID]struct{}),
	}
}

func (t *memTx) Products() shared.ProductRepository       { return productRepo{t} }
func (t *memTx) Variants() shared.VariantRepository       { return variantRepo{t} }
func (t *memTx) Orders() shared.OrderRepository           { return orderRepo{t} }
func (t *memTx) Coupons() shared.CouponRepository         { return couponRepo{t} }
func (t *memTx) UserCoupons() shared.UserCouponRepository { return userCouponRepo{t} }
func (t *memTx) Accounts() shared.AccountRepository       { return accountRepo{t} }
func (t *memTx) BalanceLogs() shared.BalanceLogRepository { return balanceLogRepo{t} }
func (t *memTx) Outbox() shared.OutboxRepository          { return outboxRepo{t} }
func (t *memTx) CartItems() shared.CartItemRepository     { return cartItemRepo{t} }

func lockKey(kind string, id uuid.UUID) string {
	return kind + ":" + id.String()
}

// lock is reentrant within the transaction.
func (t *memTx) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, t.lockWait)
	defer cancel()
	if err := t.store.locks.acquire(ctx, key); err != nil {
		return err
	}
	t.held[key] = struct{}{}
	return nil
}

func (t *memTx) tryLock(key string) bool {
	if _, ok := t.held[key]; ok {
		return true
	}
	if !t.store.locks.tryAcquire(key) {
		return false
	}
	t.held[key] = struct{}{}
	return true
}

func (t *memTx) writable() error {
	if t.readOnly {
		return shared.ErrReadOnlyTransaction
	}
	return nil
}

func (t *memTx) releaseAll() {
	for key := range t.held {
		t.store.locks.release(key)
	}
	t.held = nil
}

func (t *memTx) rollback() {
	t.releaseAll()
}

func (t *memTx) commit() error {
	defer t.releaseAll()
	if t.readOnly {
		return nil
	}

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, uc := range t.userCoupons {
		if _, exists := s.userCoupons[id]; exists {
			continue
		}
		for _, other := range s.userCoupons {
			if other.UserID() == uc.UserID() && other.CouponID() == uc.CouponID() {
				return errs.Wrapf(coupon.ErrAlreadyIssued, "user %s coupon %s", uc.UserID(), uc.CouponID())
			}
		}
	}

	for id, v := range t.variants {
		s.variants[id] = v
	}
	for id, o := range t.orders {
		s.orders[id] = o
	}
	for id, c := range t.coupons {
		s.coupons[id] = c
	}
	for id, uc := range t.userCoupons {
		s.userCoupons[id] = uc
	}
	for id, a := range t.accounts {
		s.accounts[id] = a
	}
	for id := range t.cartDeleted {
		delete(s.cartItems, id)
	}
	for id, it := range t.cartItems {
		s.cartItems[id] = it
	}
	s.logs = append(s.logs, t.logs...)
	s.outbox = append(s.outbox, t.outbox...)
	for i := range s.outbox {
		if at, ok := t.published[s.outbox[i].ID]; ok {
			at := at
			s.outbox[i].PublishedAt = &at
		}
	}
	return nil
}

func duplicate(kind string, id uuid.UUID) error {
	return errs.Newf("%s %s already exists", kind, id)
}
