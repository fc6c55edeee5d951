package commands

//go:generate mockgen -source=cart.go -destination=../../../tests/mock/commands/cart.go -package=mock_commands

import (
	"context"
	"log/slog"
	"time"

	"commerce-core/internal/domain/cart"
	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/pkg/metrics"
	"commerce-core/internal/usecase/shared"
)

type CartCommands interface {
	// AddToCart merges into the caller's existing item for the option, if any
	AddToCart(ctx context.Context, in AddToCartInput) (*cart.Item, error)
	RemoveFromCart(ctx context.Context, in RemoveFromCartInput) error
}

type cartCommandsImpl struct {
	uow     shared.UnitOfWork
	clock   clock.Clock
	metrics metrics.Recorder
	logger  *slog.Logger
}

func NewCartCommands(uow shared.UnitOfWork, clock clock.Clock, rec metrics.Recorder, logger *slog.Logger) CartCommands {
	return &cartCommandsImpl{uow: uow, clock: clock, metrics: rec, logger: logger}
}

// AddToCart checks the merged quantity against available stock. Nothing is reserved; the order
// placed later reserves under its own locks.
func (u *cartCommandsImpl) AddToCart(ctx context.Context, in AddToCartInput) (added *cart.Item, err error) {
	start := time.Now()
	defer func() { observe(u.metrics, "add_to_cart", start, err) }()

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := u.clock.Now()

		if _, err := tx.Accounts().FindByIDForUpdate(ctx, in.UserID); err != nil {
			return err
		}
		v, err := tx.Variants().FindByID(ctx, in.VariantID)
		if err != nil {
			return err
		}
		p, err := tx.Products().FindByID(ctx, v.ProductID())
		if err != nil {
			return err
		}
		if err := p.EnsureAvailable(); err != nil {
			return err
		}

		it, err := tx.CartItems().FindByUserAndVariant(ctx, in.UserID, v.ID())
		switch {
		case err == nil:
			if err := it.Add(in.Quantity, now); err != nil {
				return err
			}
			if err := ensureAvailable(v, it.Quantity()); err != nil {
				return err
			}
			if err := tx.CartItems().Save(ctx, it); err != nil {
				return err
			}
		case errs.Is(err, cart.ErrCartItemNotFound):
			if it, err = cart.NewItem(in.UserID, v.ID(), in.Quantity, now); err != nil {
				return err
			}
			if err := ensureAvailable(v, it.Quantity()); err != nil {
				return err
			}
			if err := tx.CartItems().Create(ctx, it); err != nil {
				return err
			}
		default:
			return err
		}
		added = it
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("cart item added", "user_id", in.UserID, "variant_id", in.VariantID, "quantity", added.Quantity())
	return added, nil
}

func (u *cartCommandsImpl) RemoveFromCart(ctx context.Context, in RemoveFromCartInput) (err error) {
	start := time.Now()
	defer func() { observe(u.metrics, "remove_from_cart", start, err) }()

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Accounts().FindByIDForUpdate(ctx, in.UserID); err != nil {
			return err
		}
		it, err := tx.CartItems().FindByID(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if !it.IsOwnedBy(in.UserID) {
			return errs.Wrapf(errs.ErrUnauthorized, "cart item %s", in.ItemID)
		}
		return tx.CartItems().Delete(ctx, it.ID())
	})
	if err != nil {
		return err
	}

	u.logger.Info("cart item removed", "user_id", in.UserID, "item_id", in.ItemID)
	return nil
}

func ensureAvailable(v *inventory.Variant, qty int64) error {
	if v.Available() < qty {
		return errs.Wrapf(inventory.ErrInsufficientStock, "variant %s: available %d, in cart %d", v.ID(), v.Available(), qty)
	}
	return nil
}
