package memory

import (
	"context"
	"sort"
	"time"

	"commerce-core/internal/domain/cart"
	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/event"
	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/domain/order"
	"commerce-core/internal/domain/product"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

// ---- products (read-only catalog) ----

type productRepo struct{ tx *memTx }

func (r productRepo) FindByID(_ context.Context, id uuid.UUID) (*product.Product, error) {
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	p, ok := r.tx.store.products[id]
	if !ok {
		return nil, errs.Wrapf(product.ErrProductNotFound, "product %s", id)
	}
	return &p, nil
}

func (r productRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*product.Product, error) {
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	out := make(map[uuid.UUID]*product.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.tx.store.products[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (r productRepo) ListAvailable(_ context.Context) ([]*product.Product, error) {
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	var out []*product.Product
	for _, p := range r.tx.store.products {
		if p.IsAvailable() {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name() != out[j].Name() {
			return out[i].Name() < out[j].Name()
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out, nil
}

// ---- variants ----

type variantRepo struct{ tx *memTx }

func (r variantRepo) load(id uuid.UUID) (*inventory.Variant, error) {
	if v, ok := r.tx.variants[id]; ok {
		return &v, nil
	}
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	v, ok := r.tx.store.variants[id]
	if !ok {
		return nil, errs.Wrapf(inventory.ErrVariantNotFound, "variant %s", id)
	}
	return &v, nil
}

func (r variantRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Variant, error) {
	return r.load(id)
}

func (r variantRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*inventory.Variant, error) {
	out := make(map[uuid.UUID]*inventory.Variant, len(ids))
	for _, id := range ids {
		if v, err := r.load(id); err == nil {
			out[id] = v
		}
	}
	return out, nil
}

func (r variantRepo) ListByProducts(_ context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]*inventory.Variant, error) {
	wanted := make(map[uuid.UUID]struct{}, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = struct{}{}
	}

	r.tx.store.mu.RLock()
	var ids []uuid.UUID
	for id, v := range r.tx.store.variants {
		if _, ok := wanted[v.ProductID()]; ok {
			ids = append(ids, id)
		}
	}
	r.tx.store.mu.RUnlock()

	out := make(map[uuid.UUID][]*inventory.Variant, len(productIDs))
	for _, id := range ids {
		v, err := r.load(id)
		if err != nil {
			return nil, err
		}
		out[v.ProductID()] = append(out[v.ProductID()], v)
	}
	for pid := range out {
		group := out[pid]
		sort.Slice(group, func(i, j int) bool {
			if group[i].Name() != group[j].Name() {
				return group[i].Name() < group[j].Name()
			}
			return group[i].ID().String() < group[j].ID().String()
		})
	}
	return out, nil
}

func (r variantRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Variant, error) {
	if !r.tx.readOnly {
		if err := r.tx.lock(ctx, lockKey("variant", id)); err != nil {
			return nil, err
		}
	}
	return r.load(id)
}

func (r variantRepo) Save(ctx context.Context, v *inventory.Variant) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, err := r.load(v.ID()); err != nil {
		return err
	}
	if err := r.tx.lock(ctx, lockKey("variant", v.ID())); err != nil {
		return err
	}
	r.tx.variants[v.ID()] = *v
	return nil
}

// ---- orders ----

type orderRepo struct{ tx *memTx }

func (r orderRepo) load(id uuid.UUID) (*order.Order, error) {
	if o, ok := r.tx.orders[id]; ok {
		return &o, nil
	}
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	o, ok := r.tx.store.orders[id]
	if !ok {
		return nil, errs.Wrapf(order.ErrOrderNotFound, "order %s", id)
	}
	return &o, nil
}

func (r orderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	return r.load(id)
}

func (r orderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	if !r.tx.readOnly {
		if err := r.tx.lock(ctx, lockKey("order", id)); err != nil {
			return nil, err
		}
	}
	return r.load(id)
}

func (r orderRepo) Create(ctx context.Context, o *order.Order) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, err := r.load(o.ID()); err == nil {
		return duplicate("order", o.ID())
	}
	if err := r.tx.lock(ctx, lockKey("order", o.ID())); err != nil {
		return err
	}
	r.tx.orders[o.ID()] = *o
	return nil
}

func (r orderRepo) Save(ctx context.Context, o *order.Order) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, err := r.load(o.ID()); err != nil {
		return err
	}
	if err := r.tx.lock(ctx, lockKey("order", o.ID())); err != nil {
		return err
	}
	r.tx.orders[o.ID()] = *o
	return nil
}

// visible merges committed rows with this transaction's staged writes.
func (r orderRepo) visible(keep func(*order.Order) bool) []*order.Order {
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	var out []*order.Order
	for id, o := range r.tx.store.orders {
		if _, staged := r.tx.orders[id]; staged {
			continue
		}
		o := o
		if keep(&o) {
			out = append(out, &o)
		}
	}
	for _, o := range r.tx.orders {
		o := o
		if keep(&o) {
			out = append(out, &o)
		}
	}
	return out
}

func (r orderRepo) List(_ context.Context, filter shared.OrderFilter) ([]*order.Order, error) {
	out := r.visible(func(o *order.Order) bool {
		return o.UserID() == filter.UserID &&
			(filter.Status == nil || o.Status() == *filter.Status) &&
			(filter.After == nil || filter.After.Admits(o))
	})
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].CreatedAt().Truncate(time.Microsecond), out[j].CreatedAt().Truncate(time.Microsecond)
		if !ai.Equal(aj) {
			return ai.After(aj)
		}
		return out[i].ID().String() > out[j].ID().String()
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = shared.DefaultPageSize
	}
	return page(out, 0, limit), nil
}

func (r orderRepo) FindOverdueIDs(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	out := r.visible(func(o *order.Order) bool { return o.IsOverdue(now) })
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt().Before(out[j].ExpiresAt()) })
	out = page(out, 0, limit)

	ids := make([]uuid.UUID, len(out))
	for i, o := range out {
		ids[i] = o.ID()
	}
	return ids, nil
}

// ---- coupons ----

type couponRepo struct{ tx *memTx }

func (r couponRepo) load(id uuid.UUID) (*coupon.Coupon, error) {
	if c, ok := r.tx.coupons[id]; ok {
		return &c, nil
	}
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	c, ok := r.tx.store.coupons[id]
	if !ok {
		return nil, errs.Wrapf(coupon.ErrCouponNotFound, "coupon %s", id)
	}
	return &c, nil
}

func (r couponRepo) FindByID(_ context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	return r.load(id)
}

func (r couponRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	if !r.tx.readOnly {
		if err := r.tx.lock(ctx, lockKey("coupon", id)); err != nil {
			return nil, err
		}
	}
	return r.load(id)
}

func (r couponRepo) Save(ctx context.Context, c *coupon.Coupon) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, err := r.load(c.ID()); err != nil {
		return err
	}
	if err := r.tx.lock(ctx, lockKey("coupon", c.ID())); err != nil {
		return err
	}
	r.tx.coupons[c.ID()] = *c
	return nil
}

// ---- user coupons ----

type userCouponRepo struct{ tx *memTx }

func (r userCouponRepo) load(id uuid.UUID) (*coupon.UserCoupon, error) {
	if uc, ok := r.tx.userCoupons[id]; ok {
		return &uc, nil
	}
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	uc, ok := r.tx.store.userCoupons[id]
	if !ok {
		return nil, errs.Wrapf(coupon.ErrCouponNotFound, "user coupon %s", id)
	}
	return &uc, nil
}

func (r userCouponRepo) FindByID(_ context.Context, id uuid.UUID) (*coupon.UserCoupon, error) {
	return r.load(id)
}

func (r userCouponRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*coupon.UserCoupon, error) {
	if !r.tx.readOnly {
		if err := r.tx.lock(ctx, lockKey("user_coupon", id)); err != nil {
			return nil, err
		}
	}
	return r.load(id)
}

func pairKey(userID, couponID uuid.UUID) string {
	return "uc:" + userID.String() + ":" + couponID.String()
}

func (r userCouponRepo) exists(userID, couponID uuid.UUID) bool {
	for _, uc := range r.tx.userCoupons {
		if uc.UserID() == userID && uc.CouponID() == couponID {
			return true
		}
	}
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	for _, uc := range r.tx.store.userCoupons {
		if uc.UserID() == userID && uc.CouponID() == couponID {
			return true
		}
	}
	return false
}

// ExistsByUserAndCoupon locks the (user, coupon) pair for writers, so the check and the
// following Create cannot interleave with another transaction doing the same.
func (r userCouponRepo) ExistsByUserAndCoupon(ctx context.Context, userID, couponID uuid.UUID) (bool, error) {
	if !r.tx.readOnly {
		if err := r.tx.lock(ctx, pairKey(userID, couponID)); err != nil {
			return false, err
		}
	}
	return r.exists(userID, couponID), nil
}

func (r userCouponRepo) Create(ctx context.Context, uc *coupon.UserCoupon) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if err := r.tx.lock(ctx, pairKey(uc.UserID(), uc.CouponID())); err != nil {
		return err
	}
	if r.exists(uc.UserID(), uc.CouponID()) {
		return errs.Wrapf(coupon.ErrAlreadyIssued, "user %s coupon %s", uc.UserID(), uc.CouponID())
	}
	if err := r.tx.lock(ctx, lockKey("user_coupon", uc.ID())); err != nil {
		return err
	}
	r.tx.userCoupons[uc.ID()] = *uc
	return nil
}

func (r userCouponRepo) Save(ctx context.Context, uc *coupon.UserCoupon) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, err := r.load(uc.ID()); err != nil {
		return err
	}
	if err := r.tx.lock(ctx, lockKey("user_coupon", uc.ID())); err != nil {
		return err
	}
	r.tx.userCoupons[uc.ID()] = *uc
	return nil
}

func (r userCouponRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*coupon.UserCoupon, error) {
	r.tx.store.mu.RLock()
	var out []*coupon.UserCoupon
	for id, uc := range r.tx.store.userCoupons {
		if _, staged := r.tx.userCoupons[id]; staged || uc.UserID() != userID {
			continue
		}
		uc := uc
		out = append(out, &uc)
	}
	r.tx.store.mu.RUnlock()

	for _, uc := range r.tx.userCoupons {
		if uc.UserID() == userID {
			uc := uc
			out = append(out, &uc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt().After(out[j].IssuedAt()) })
	return out, nil
}

// ---- accounts ----

type accountRepo struct{ tx *memTx }

func (r accountRepo) load(userID uuid.UUID) (*ledger.Account, error) {
	if a, ok := r.tx.accounts[userID]; ok {
		return &a, nil
	}
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	a, ok := r.tx.store.accounts[userID]
	if !ok {
		return nil, errs.Wrapf(ledger.ErrUserNotFound, "user %s", userID)
	}
	return &a, nil
}

func (r accountRepo) FindByID(_ context.Context, userID uuid.UUID) (*ledger.Account, error) {
	return r.load(userID)
}

func (r accountRepo) FindByIDForUpdate(ctx context.Context, userID uuid.UUID) (*ledger.Account, error) {
	if !r.tx.readOnly {
		if err := r.tx.lock(ctx, lockKey("account", userID)); err != nil {
			return nil, err
		}
	}
	return r.load(userID)
}

func (r accountRepo) Save(ctx context.Context, a *ledger.Account) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, err := r.load(a.UserID()); err != nil {
		return err
	}
	if err := r.tx.lock(ctx, lockKey("account", a.UserID())); err != nil {
		return err
	}
	r.tx.accounts[a.UserID()] = *a
	return nil
}

// ---- cart items ----

type cartItemRepo struct{ tx *memTx }

func (r cartItemRepo) load(id uuid.UUID) (*cart.Item, error) {
	if _, gone := r.tx.cartDeleted[id]; gone {
		return nil, errs.Wrapf(cart.ErrCartItemNotFound, "cart item %s", id)
	}
	if it, ok := r.tx.cartItems[id]; ok {
		return &it, nil
	}
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	it, ok := r.tx.store.cartItems[id]
	if !ok {
		return nil, errs.Wrapf(cart.ErrCartItemNotFound, "cart item %s", id)
	}
	return &it, nil
}

// visible merges committed items with staged writes and deletes.
func (r cartItemRepo) visible(keep func(*cart.Item) bool) []*cart.Item {
	r.tx.store.mu.RLock()
	var out []*cart.Item
	for id, it := range r.tx.store.cartItems {
		if _, staged := r.tx.cartItems[id]; staged {
			continue
		}
		if _, gone := r.tx.cartDeleted[id]; gone {
			continue
		}
		it := it
		if keep(&it) {
			out = append(out, &it)
		}
	}
	r.tx.store.mu.RUnlock()

	for _, it := range r.tx.cartItems {
		it := it
		if keep(&it) {
			out = append(out, &it)
		}
	}
	return out
}

func (r cartItemRepo) FindByID(_ context.Context, id uuid.UUID) (*cart.Item, error) {
	return r.load(id)
}

func (r cartItemRepo) FindByUserAndVariant(_ context.Context, userID, variantID uuid.UUID) (*cart.Item, error) {
	found := r.visible(func(it *cart.Item) bool { return it.UserID() == userID && it.VariantID() == variantID })
	if len(found) == 0 {
		return nil, errs.Wrapf(cart.ErrCartItemNotFound, "user %s variant %s", userID, variantID)
	}
	return found[0], nil
}

func (r cartItemRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*cart.Item, error) {
	out := r.visible(func(it *cart.Item) bool { return it.UserID() == userID })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().Before(out[j].CreatedAt())
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out, nil
}

func (r cartItemRepo) Create(ctx context.Context, it *cart.Item) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, err := r.FindByUserAndVariant(ctx, it.UserID(), it.VariantID()); err == nil {
		return duplicate("cart item", it.ID())
	}
	r.tx.cartItems[it.ID()] = *it
	return nil
}

func (r cartItemRepo) Save(_ context.Context, it *cart.Item) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, err := r.load(it.ID()); err != nil {
		return err
	}
	r.tx.cartItems[it.ID()] = *it
	return nil
}

func (r cartItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if _, err := r.load(id); err != nil {
		return err
	}
	delete(r.tx.cartItems, id)
	r.tx.cartDeleted[id] = struct{}{}
	return nil
}

// ---- balance change logs ----

type balanceLogRepo struct{ tx *memTx }

func (r balanceLogRepo) Append(_ context.Context, l *ledger.BalanceChangeLog) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.logs = append(r.tx.logs, l)
	return nil
}

func (r balanceLogRepo) List(_ context.Context, filter shared.BalanceLogFilter) ([]*ledger.BalanceChangeLog, int, error) {
	filter = filter.Normalize()

	r.tx.store.mu.RLock()
	all := make([]*ledger.BalanceChangeLog, 0, len(r.tx.store.logs)+len(r.tx.logs))
	all = append(all, r.tx.store.logs...)
	r.tx.store.mu.RUnlock()
	all = append(all, r.tx.logs...)

	var matched []*ledger.BalanceChangeLog
	for i := len(all) - 1; i >= 0; i-- {
		if filter.Matches(all[i]) {
			matched = append(matched, all[i])
		}
	}
	return page(matched, filter.Offset(), filter.Size), len(matched), nil
}

// ---- outbox ----

type outboxRepo struct{ tx *memTx }

func (r outboxRepo) Append(_ context.Context, events ...event.Outbox) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	r.tx.outbox = append(r.tx.outbox, events...)
	return nil
}

// ClaimUnpublished skips events claimed by a concurrent relay transaction.
func (r outboxRepo) ClaimUnpublished(_ context.Context, limit int) ([]event.Outbox, error) {
	if err := r.tx.writable(); err != nil {
		return nil, err
	}
	r.tx.store.mu.RLock()
	var candidates []event.Outbox
	for _, ev := range r.tx.store.outbox {
		if ev.PublishedAt == nil {
			candidates = append(candidates, ev)
		}
	}
	r.tx.store.mu.RUnlock()

	var out []event.Outbox
	for _, ev := range candidates {
		if len(out) >= limit {
			break
		}
		if r.tx.tryLock(lockKey("outbox", ev.ID)) && !r.publishedElsewhere(ev.ID) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// publishedElsewhere catches a relay that committed between the scan and the claim.
func (r outboxRepo) publishedElsewhere(id uuid.UUID) bool {
	r.tx.store.mu.RLock()
	defer r.tx.store.mu.RUnlock()
	for _, ev := range r.tx.store.outbox {
		if ev.ID == id {
			return ev.PublishedAt != nil
		}
	}
	return false
}

func (r outboxRepo) MarkPublished(_ context.Context, ids []uuid.UUID, at time.Time) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	for _, id := range ids {
		r.tx.published[id] = at
	}
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) || limit <= 0 {
		end = len(items)
	}
	return items[offset:end]
}
