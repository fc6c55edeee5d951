package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/pkg/pgconv"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	orderColumns = "id, user_id, coupon_id, user_coupon_id, total_amount, discount_amount, final_amount, status, created_at, paid_at, expires_at, updated_at"
	lineColumns  = "id, order_id, variant_id, product_name, unit_price, quantity, subtotal"
)

type OrderRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewOrderRepository(db DBTX, logger *slog.Logger) *OrderRepository {
	return &OrderRepository{db: db, logger: logger}
}

// orderRow holds the header columns until the lines are loaded.
type orderRow struct {
	id, userID                               uuid.UUID
	couponID, userCouponID                   pgtype.UUID
	totalAmount, discountAmount, finalAmount int64
	status                                   string
	createdAt                                time.Time
	paidAt                                   pgtype.Timestamptz
	expiresAt, updatedAt                     time.Time
}

func (r *orderRow) scan(row rowScanner) error {
	return row.Scan(&r.id, &r.userID, &r.couponID, &r.userCouponID, &r.totalAmount, &r.discountAmount, &r.finalAmount,
		&r.status, &r.createdAt, &r.paidAt, &r.expiresAt, &r.updatedAt)
}

func (r *orderRow) toDomain(lines []order.Line) (*order.Order, error) {
	return order.Reconstruct(
		r.id, r.userID,
		pgconv.UUIDPtrFromPgtype(r.couponID), pgconv.UUIDPtrFromPgtype(r.userCouponID),
		r.totalAmount, r.discountAmount, r.finalAmount,
		order.Status(r.status),
		lines,
		r.createdAt,
		pgconv.TimePtrFromPgtype(r.paidAt),
		r.expiresAt, r.updatedAt,
	)
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.find(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
}

// FindByIDForUpdate locks the order header. Lines are immutable and need no lock.
func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.find(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1"+forUpdate, id)
}

func (r *OrderRepository) find(ctx context.Context, query string, id uuid.UUID) (*order.Order, error) {
	var row orderRow
	if err := row.scan(r.db.QueryRow(ctx, query, id)); err != nil {
		return nil, mapErr(r.logger, err, order.ErrOrderNotFound, "failed to get order "+id.String())
	}

	lines, err := r.loadLines(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return row.toDomain(lines[id])
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO orders ("+orderColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)",
		o.ID(), o.UserID(), pgconv.UUIDPtrToPgtype(o.CouponID()), pgconv.UUIDPtrToPgtype(o.UserCouponID()),
		o.TotalAmount(), o.DiscountAmount(), o.FinalAmount(), o.Status().String(),
		o.CreatedAt(), pgconv.TimePtrToPgtype(o.PaidAt()), o.ExpiresAt(), o.UpdatedAt(),
	)
	if err != nil {
		return mapErr(r.logger, err, nil, "failed to create order")
	}

	for i, l := range o.Lines() {
		_, err := r.db.Exec(ctx,
			"INSERT INTO order_lines ("+lineColumns+", line_no) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
			l.ID(), o.ID(), l.VariantID(), l.ProductName(), l.UnitPrice(), l.Quantity(), l.Subtotal(), i,
		)
		if err != nil {
			return mapErr(r.logger, err, nil, "failed to create order line")
		}
	}
	return nil
}

func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders
		    SET coupon_id = $2, user_coupon_id = $3, discount_amount = $4, final_amount = $5, status = $6, paid_at = $7, updated_at = $8
		  WHERE id = $1`,
		o.ID(), pgconv.UUIDPtrToPgtype(o.CouponID()), pgconv.UUIDPtrToPgtype(o.UserCouponID()), o.DiscountAmount(), o.FinalAmount(),
		o.Status().String(), pgconv.TimePtrToPgtype(o.PaidAt()), o.UpdatedAt(),
	)
	if err != nil {
		return mapErr(r.logger, err, nil, "failed to save order "+o.ID().String())
	}
	return expectOneRow(tag, order.ErrOrderNotFound, "order "+o.ID().String())
}

func (r *OrderRepository) List(ctx context.Context, filter shared.OrderFilter) ([]*order.Order, error) {
	var status *string
	if filter.Status != nil {
		s := filter.Status.String()
		status = &s
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = shared.DefaultPageSize
	}
	var afterAt pgtype.Timestamptz
	var afterID pgtype.UUID
	if filter.After != nil {
		afterAt = pgtype.Timestamptz{Time: filter.After.CreatedAt, Valid: true}
		afterID = pgtype.UUID{Bytes: filter.After.ID, Valid: true}
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		  WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
		    AND ($3::timestamptz IS NULL OR (created_at, id::text) < ($3, $4::uuid::text))
		  ORDER BY created_at DESC, id::text DESC
		  LIMIT $5`,
		filter.UserID, status, afterAt, afterID, limit,
	)
	if err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to list orders")
	}
	defer rows.Close()

	var headers []orderRow
	for rows.Next() {
		var row orderRow
		if err := row.scan(rows); err != nil {
			return nil, mapErr(r.logger, err, nil, "failed to scan order")
		}
		headers = append(headers, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to iterate orders")
	}

	ids := make([]uuid.UUID, len(headers))
	for i := range headers {
		ids[i] = headers[i].id
	}
	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*order.Order, 0, len(headers))
	for i := range headers {
		o, err := headers[i].toDomain(lines[headers[i].id])
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *OrderRepository) FindOverdueIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id FROM orders WHERE status = $1 AND expires_at < $2 ORDER BY expires_at, id LIMIT $3",
		order.StatusPending.String(), now, limit,
	)
	if err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to list overdue orders")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, mapErr(r.logger, err, nil, "failed to scan overdue order id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to iterate overdue orders")
	}
	return ids, nil
}

func (r *OrderRepository) loadLines(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]order.Line, error) {
	out := make(map[uuid.UUID][]order.Line, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		"SELECT "+lineColumns+" FROM order_lines WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, line_no",
		idStrings(orderIDs),
	)
	if err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to load order lines")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, orderID, variantID        uuid.UUID
			name                          string
			unitPrice, quantity, subtotal int64
		)
		if err := rows.Scan(&id, &orderID, &variantID, &name, &unitPrice, &quantity, &subtotal); err != nil {
			return nil, mapErr(r.logger, err, nil, "failed to scan order line")
		}
		l, err := order.ReconstructLine(id, orderID, variantID, name, unitPrice, quantity, subtotal)
		if err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to iterate order lines")
	}
	return out, nil
}
