package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-core/internal/domain/product"

	"github.com/google/uuid"
)

const productColumns = "id, name, price, is_available, created_at, updated_at"

type ProductRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewProductRepository(db DBTX, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{db: db, logger: logger}
}

func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	row := r.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, mapErr(r.logger, err, product.ErrProductNotFound, "failed to get product "+id.String())
	}
	return p, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*product.Product, error) {
	out := make(map[uuid.UUID]*product.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, "SELECT "+productColumns+" FROM products WHERE id = ANY($1::uuid[])", idStrings(ids))
	if err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to list products")
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, mapErr(r.logger, err, nil, "failed to scan product")
		}
		out[p.ID()] = p
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to iterate products")
	}
	return out, nil
}

func (r *ProductRepository) ListAvailable(ctx context.Context) ([]*product.Product, error) {
	rows, err := r.db.Query(ctx, "SELECT "+productColumns+" FROM products WHERE is_available ORDER BY name, id")
	if err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to list available products")
	}
	defer rows.Close()

	var out []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, mapErr(r.logger, err, nil, "failed to scan product")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to iterate products")
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var (
		id                   uuid.UUID
		name                 string
		price                int64
		isAvailable          bool
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &price, &isAvailable, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return product.ReconstructProduct(id, name, price, isAvailable, createdAt, updatedAt), nil
}
