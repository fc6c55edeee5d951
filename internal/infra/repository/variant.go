package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	variantColumns = "SELECT id, product_id, name, extra_price, stock, reserved_stock, updated_at FROM product_variants"
	variantSelect  = variantColumns + " WHERE id = $1"
)

type VariantRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewVariantRepository(db DBTX, logger *slog.Logger) *VariantRepository {
	return &VariantRepository{db: db, logger: logger}
}

func (r *VariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Variant, error) {
	return r.find(ctx, variantSelect, id)
}

func (r *VariantRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Variant, error) {
	return r.find(ctx, variantSelect+forUpdate, id)
}

func (r *VariantRepository) find(ctx context.Context, query string, id uuid.UUID) (*inventory.Variant, error) {
	v, err := scanVariant(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errs.IsInvariant(err) {
			return nil, err
		}
		return nil, mapErr(r.logger, err, inventory.ErrVariantNotFound, "failed to get variant "+id.String())
	}
	return v, nil
}

func (r *VariantRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*inventory.Variant, error) {
	out := make(map[uuid.UUID]*inventory.Variant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	err := r.each(ctx, variantColumns+" WHERE id = ANY($1::uuid[])", idStrings(ids), func(v *inventory.Variant) {
		out[v.ID()] = v
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *VariantRepository) ListByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]*inventory.Variant, error) {
	out := make(map[uuid.UUID][]*inventory.Variant, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	err := r.each(ctx, variantColumns+" WHERE product_id = ANY($1::uuid[]) ORDER BY product_id, name, id", idStrings(productIDs), func(v *inventory.Variant) {
		out[v.ProductID()] = append(out[v.ProductID()], v)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *VariantRepository) each(ctx context.Context, query string, ids []string, fn func(*inventory.Variant)) error {
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return mapErr(r.logger, err, nil, "failed to list variants")
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			if errs.IsInvariant(err) {
				return err
			}
			return mapErr(r.logger, err, nil, "failed to scan variant")
		}
		fn(v)
	}
	if err := rows.Err(); err != nil {
		return mapErr(r.logger, err, nil, "failed to iterate variants")
	}
	return nil
}

func (r *VariantRepository) Save(ctx context.Context, v *inventory.Variant) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE product_variants SET stock = $2, reserved_stock = $3, updated_at = $4 WHERE id = $1",
		v.ID(), v.Stock(), v.ReservedStock(), v.UpdatedAt(),
	)
	if err != nil {
		return mapErr(r.logger, err, nil, "failed to save variant "+v.ID().String())
	}
	return expectOneRow(tag, inventory.ErrVariantNotFound, "variant "+v.ID().String())
}

func scanVariant(row rowScanner) (*inventory.Variant, error) {
	var (
		variantID, productID        uuid.UUID
		name                        string
		extraPrice, stock, reserved int64
		updatedAt                   time.Time
	)
	if err := row.Scan(&variantID, &productID, &name, &extraPrice, &stock, &reserved, &updatedAt); err != nil {
		return nil, err
	}
	return inventory.ReconstructVariant(variantID, productID, name, extraPrice, stock, reserved, updatedAt)
}
