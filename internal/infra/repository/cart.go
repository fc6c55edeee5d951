package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-core/internal/domain/cart"
	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

const cartItemSelect = "SELECT id, user_id, variant_id, quantity, created_at, updated_at FROM cart_items"

type CartItemRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewCartItemRepository(db DBTX, logger *slog.Logger) *CartItemRepository {
	return &CartItemRepository{db: db, logger: logger}
}

func (r *CartItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Item, error) {
	return r.find(ctx, cartItemSelect+" WHERE id = $1", "cart item "+id.String(), id)
}

func (r *CartItemRepository) FindByUserAndVariant(ctx context.Context, userID, variantID uuid.UUID) (*cart.Item, error) {
	return r.find(ctx, cartItemSelect+" WHERE user_id = $1 AND variant_id = $2",
		"cart item for user "+userID.String()+" variant "+variantID.String(), userID, variantID)
}

func (r *CartItemRepository) find(ctx context.Context, query, what string, args ...any) (*cart.Item, error) {
	it, err := scanCartItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errs.IsInvariant(err) {
			return nil, err
		}
		return nil, mapErr(r.logger, err, cart.ErrCartItemNotFound, "failed to get "+what)
	}
	return it, nil
}

func (r *CartItemRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*cart.Item, error) {
	rows, err := r.db.Query(ctx, cartItemSelect+" WHERE user_id = $1 ORDER BY created_at, id", userID)
	if err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to list cart items")
	}
	defer rows.Close()

	var out []*cart.Item
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			if errs.IsInvariant(err) {
				return nil, err
			}
			return nil, mapErr(r.logger, err, nil, "failed to scan cart item")
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to iterate cart items")
	}
	return out, nil
}

func (r *CartItemRepository) Create(ctx context.Context, it *cart.Item) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO cart_items (id, user_id, variant_id, quantity, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		it.ID(), it.UserID(), it.VariantID(), it.Quantity(), it.CreatedAt(), it.UpdatedAt(),
	)
	if err != nil {
		return mapErr(r.logger, err, nil, "failed to create cart item")
	}
	return nil
}

func (r *CartItemRepository) Save(ctx context.Context, it *cart.Item) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE cart_items SET quantity = $2, updated_at = $3 WHERE id = $1",
		it.ID(), it.Quantity(), it.UpdatedAt(),
	)
	if err != nil {
		return mapErr(r.logger, err, nil, "failed to save cart item "+it.ID().String())
	}
	return expectOneRow(tag, cart.ErrCartItemNotFound, "cart item "+it.ID().String())
}

func (r *CartItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM cart_items WHERE id = $1", id)
	if err != nil {
		return mapErr(r.logger, err, nil, "failed to delete cart item "+id.String())
	}
	return expectOneRow(tag, cart.ErrCartItemNotFound, "cart item "+id.String())
}

func scanCartItem(row rowScanner) (*cart.Item, error) {
	var (
		id, userID, variantID uuid.UUID
		quantity              int64
		createdAt, updatedAt  time.Time
	)
	if err := row.Scan(&id, &userID, &variantID, &quantity, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return cart.ReconstructItem(id, userID, variantID, quantity, createdAt, updatedAt)
}
