package commands

//go:generate mockgen -source=orders.go -destination=../../../tests/mock/commands/orders.go -package=mock_commands

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"commerce-core/internal/domain/event"
	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/domain/order"
	"commerce-core/internal/domain/product"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/pkg/metrics"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type OrderCommands interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*order.Order, error)
	ProcessPayment(ctx context.Context, in ProcessPaymentInput) (*order.Order, error)
	CancelOrder(ctx context.Context, in CancelOrderInput) (*order.Order, error)
}

type orderCommandsImpl struct {
	uow      shared.UnitOfWork
	clock    clock.Clock
	metrics  metrics.Recorder
	logger   *slog.Logger
	window   time.Duration
	maxLines int
}

func NewOrderCommands(
	uow shared.UnitOfWork,
	clock clock.Clock,
	rec metrics.Recorder,
	logger *slog.Logger,
	cfg config.OrderConfig,
) OrderCommands {
	window := cfg.PaymentWindow
	if window <= 0 {
		window = order.DefaultPaymentWindow
	}
	return &orderCommandsImpl{
		uow:      uow,
		clock:    clock,
		metrics:  rec,
		logger:   logger,
		window:   window,
		maxLines: cfg.MaxLines,
	}
}

func (u *orderCommandsImpl) CreateOrder(ctx context.Context, in CreateOrderInput) (created *order.Order, err error) {
	start := time.Now()
	defer func() { observe(u.metrics, "create_order", start, err) }()

	lines, err := u.mergeLines(in.Lines)
	if err != nil {
		return nil, err
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := u.clock.Now()
		if _, err := tx.Accounts().FindByID(ctx, in.UserID); err != nil {
			return err
		}

		variants, err := lockVariants(ctx, tx, variantIDs(lines))
		if err != nil {
			return err
		}
		products, err := loadProducts(ctx, tx, variants)
		if err != nil {
			return err
		}

		orderLines := make([]order.Line, 0, len(lines))
		for _, l := range lines {
			v := variants[l.VariantID]
			p := products[v.ProductID()]
			if err := p.EnsureAvailable(); err != nil {
				return err
			}
			if err := v.Reserve(l.Quantity, now); err != nil {
				return errs.Wrapf(err, "variant %s", v.ID())
			}
			if err := tx.Variants().Save(ctx, v); err != nil {
				return err
			}
			line, err := order.NewLine(v.ID(), p.Name(), p.UnitPrice(v.ExtraPrice()), l.Quantity)
			if err != nil {
				return err
			}
			orderLines = append(orderLines, line)
		}

		o, err := order.New(in.UserID, orderLines, now, u.window)
		if err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		ev, err := orderCreatedEvent(o, now)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Append(ctx, ev); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.metrics.OrderStatusChanged(created.Status().String())
	u.logger.Info("order created", "order_id", created.ID(), "user_id", in.UserID, "total", created.TotalAmount())
	return created, nil
}

// mergeLines folds repeated variants into one line, keeping first-seen order.
func (u *orderCommandsImpl) mergeLines(in []OrderLineInput) ([]OrderLineInput, error) {
	if len(in) == 0 {
		return nil, order.ErrEmptyOrder
	}
	if u.maxLines > 0 && len(in) > u.maxLines {
		return nil, errs.Wrapf(errs.ErrInvalidArgument, "at most %d lines per order", u.maxLines)
	}

	index := make(map[uuid.UUID]int, len(in))
	out := make([]OrderLineInput, 0, len(in))
	for _, l := range in {
		if l.Quantity <= 0 {
			return nil, errs.Wrapf(inventory.ErrInvalidQuantity, "variant %s", l.VariantID)
		}
		if i, ok := index[l.VariantID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.VariantID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

func (u *orderCommandsImpl) ProcessPayment(ctx context.Context, in ProcessPaymentInput) (paid *order.Order, err error) {
	start := time.Now()
	defer func() { observe(u.metrics, "process_payment", start, err) }()

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := u.clock.Now()

		o, err := tx.Orders().FindByIDForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(in.UserID) {
			return errs.Wrapf(errs.ErrUnauthorized, "order %s", o.ID())
		}
		if err := ensurePayable(o, now); err != nil {
			return err
		}

		if in.UserCouponID != nil {
			if err := u.redeemCoupon(ctx, tx, o, *in.UserCouponID, now); err != nil {
				return err
			}
		}

		acc, err := tx.Accounts().FindByIDForUpdate(ctx, o.UserID())
		if err != nil {
			return err
		}
		// nothing to debit, and a zero-amount log entry is not allowed
		if o.FinalAmount() > 0 {
			refID := o.ID().String()
			log, err := acc.Deduct(o.FinalAmount(), nil, &refID, now)
			if err != nil {
				return err
			}
			if err := tx.Accounts().Save(ctx, acc); err != nil {
				return err
			}
			if err := tx.BalanceLogs().Append(ctx, log); err != nil {
				return err
			}
			ev, err := balanceChangedEvent(log)
			if err != nil {
				return err
			}
			if err := tx.Outbox().Append(ctx, ev); err != nil {
				return err
			}
		}

		if err := applyToLines(ctx, tx, o, now, (*inventory.Variant).Confirm); err != nil {
			return err
		}

		if err := o.Pay(now); err != nil {
			return err
		}
		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}
		ev, err := orderPaidEvent(o, now)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Append(ctx, ev); err != nil {
			return err
		}
		paid = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.metrics.OrderStatusChanged(paid.Status().String())
	u.logger.Info("order paid", "order_id", paid.ID(), "final", paid.FinalAmount(), "discount", paid.DiscountAmount())
	return paid, nil
}

// ensurePayable reports a non-payable order as ErrInvalidOrderStatus, marked with the precise reason.
func ensurePayable(o *order.Order, now time.Time) error {
	if o.CanPay(now) {
		return nil
	}
	err := errs.Wrapf(order.ErrInvalidOrderStatus, "order %s is %s", o.ID(), o.Status())
	switch {
	case o.Status() == order.StatusPaid:
		return errs.Mark(err, order.ErrAlreadyPaid)
	case o.IsOverdue(now):
		return errs.Mark(err, order.ErrOrderExpired)
	default:
		return err
	}
}

func (u *orderCommandsImpl) redeemCoupon(ctx context.Context, tx shared.Tx, o *order.Order, userCouponID uuid.UUID, now time.Time) error {
	uc, err := tx.UserCoupons().FindByIDForUpdate(ctx, userCouponID)
	if err != nil {
		return err
	}
	if !uc.IsOwnedBy(o.UserID()) {
		return errs.Wrapf(errs.ErrUnauthorized, "user coupon %s", uc.ID())
	}
	c, err := tx.Coupons().FindByID(ctx, uc.CouponID())
	if err != nil {
		return err
	}

	if err := o.ApplyCoupon(c.ID(), uc.ID(), c.Discount(o.TotalAmount()), now); err != nil {
		return err
	}
	if err := uc.Use(o.ID(), now); err != nil {
		return err
	}
	return tx.UserCoupons().Save(ctx, uc)
}

func (u *orderCommandsImpl) CancelOrder(ctx context.Context, in CancelOrderInput) (cancelled *order.Order, err error) {
	start := time.Now()
	defer func() { observe(u.metrics, "cancel_order", start, err) }()

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := u.clock.Now()

		o, err := tx.Orders().FindByIDForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(in.UserID) {
			return errs.Wrapf(errs.ErrUnauthorized, "order %s", o.ID())
		}
		if err := o.Cancel(now); err != nil {
			return err
		}
		if err := applyToLines(ctx, tx, o, now, (*inventory.Variant).Release); err != nil {
			return err
		}
		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}
		ev, err := orderReleasedEvent(o, event.TypeOrderCancelled, now)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Append(ctx, ev); err != nil {
			return err
		}
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.metrics.OrderStatusChanged(cancelled.Status().String())
	u.logger.Info("order cancelled", "order_id", cancelled.ID())
	return cancelled, nil
}

// ---- shared by order and sweeper commands ----

func variantIDs(lines []OrderLineInput) []uuid.UUID {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.VariantID
	}
	return ids
}

func sortIDs(ids []uuid.UUID) []uuid.UUID {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })
	return sorted
}

// lockVariants takes row locks in ascending id order.
func lockVariants(ctx context.Context, tx shared.Tx, ids []uuid.UUID) (map[uuid.UUID]*inventory.Variant, error) {
	out := make(map[uuid.UUID]*inventory.Variant, len(ids))
	for _, id := range sortIDs(ids) {
		v, err := tx.Variants().FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

func loadProducts(ctx context.Context, tx shared.Tx, variants map[uuid.UUID]*inventory.Variant) (map[uuid.UUID]*product.Product, error) {
	seen := make(map[uuid.UUID]struct{}, len(variants))
	ids := make([]uuid.UUID, 0, len(variants))
	for _, v := range variants {
		if _, ok := seen[v.ProductID()]; ok {
			continue
		}
		seen[v.ProductID()] = struct{}{}
		ids = append(ids, v.ProductID())
	}

	products, err := tx.Products().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, errs.Wrapf(product.ErrProductNotFound, "product %s", id)
		}
	}
	return products, nil
}

// applyToLines locks every variant of the order and applies op with the line quantity.
func applyToLines(
	ctx context.Context,
	tx shared.Tx,
	o *order.Order,
	now time.Time,
	op func(v *inventory.Variant, qty int64, now time.Time) error,
) error {
	lines := o.Lines()
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.VariantID()
	}
	variants, err := lockVariants(ctx, tx, ids)
	if err != nil {
		return err
	}

	for _, l := range lines {
		v := variants[l.VariantID()]
		if err := op(v, l.Quantity(), now); err != nil {
			return errs.Wrapf(err, "order %s variant %s", o.ID(), v.ID())
		}
		if err := tx.Variants().Save(ctx, v); err != nil {
			return err
		}
	}
	return nil
}
