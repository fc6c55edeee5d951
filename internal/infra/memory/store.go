package memory

import (
	"sort"
	"sync"

	"commerce-core/internal/domain/cart"
	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/event"
	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/domain/order"
	"commerce-core/internal/domain/product"

	"github.com/google/uuid"
)

// Store is the committed state. Entities are kept by value so a caller holding a pointer
// returned from a transaction can never mutate committed data behind the lock table's back.
type Store struct {
	mu          sync.RWMutex
	products    map[uuid.UUID]product.Product
	variants    map[uuid.UUID]inventory.Variant
	orders      map[uuid.UUID]order.Order
	coupons     map[uuid.UUID]coupon.Coupon
	userCoupons map[uuid.UUID]coupon.UserCoupon
	accounts    map[uuid.UUID]ledger.Account
	logs        []*ledger.BalanceChangeLog
	outbox      []event.Outbox
	cartItems   map[uuid.UUID]cart.Item

	locks *lockTable
}

func NewStore() *Store {
	return &Store{
		products:    make(map[uuid.UUID]product.Product),
		variants:    make(map[uuid.UUID]inventory.Variant),
		orders:      make(map[uuid.UUID]order.Order),
		coupons:     make(map[uuid.UUID]coupon.Coupon),
		userCoupons: make(map[uuid.UUID]coupon.UserCoupon),
		accounts:    make(map[uuid.UUID]ledger.Account),
		cartItems:   make(map[uuid.UUID]cart.Item),
		locks:       newLockTable(),
	}
}

// ---- seeding (catalog, promotions and users are owned outside the core) ----

func (s *Store) AddProduct(p *product.Product, variants ...*inventory.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID()] = *p
	for _, v := range variants {
		s.variants[v.ID()] = *v
	}
}

func (s *Store) AddCoupon(c *coupon.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupons[c.ID()] = *c
}

func (s *Store) AddAccount(a *ledger.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.UserID()] = *a
}

// ---- committed-state inspection ----

func (s *Store) Variant(id uuid.UUID) (*inventory.Variant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.variants[id]
	return &v, ok
}

func (s *Store) Coupon(id uuid.UUID) (*coupon.Coupon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.coupons[id]
	return &c, ok
}

func (s *Store) Account(userID uuid.UUID) (*ledger.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[userID]
	return &a, ok
}

func (s *Store) Order(id uuid.UUID) (*order.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	return &o, ok
}

func (s *Store) Orders() []*order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out
}

func (s *Store) UserCoupons() []*coupon.UserCoupon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*coupon.UserCoupon, 0, len(s.userCoupons))
	for _, uc := range s.userCoupons {
		uc := uc
		out = append(out, &uc)
	}
	return out
}

// BalanceLogs returns a user's entries oldest first.
func (s *Store) BalanceLogs(userID uuid.UUID) []*ledger.BalanceChangeLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ledger.BalanceChangeLog
	for _, l := range s.logs {
		if l.UserID() == userID {
			out = append(out, l)
		}
	}
	return out
}

// CartItems returns a user's committed cart oldest first.
func (s *Store) CartItems(userID uuid.UUID) []*cart.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*cart.Item
	for _, it := range s.cartItems {
		if it.UserID() == userID {
			it := it
			out = append(out, &it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out
}

func (s *Store) OutboxEvents() []event.Outbox {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]event.Outbox, len(s.outbox))
	copy(out, s.outbox)
	return out
}
