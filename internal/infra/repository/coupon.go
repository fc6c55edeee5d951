package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/infra"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	couponSelect     = "SELECT id, name, discount_rate, total_quantity, issued_quantity, expires_at, created_at, updated_at FROM coupons WHERE id = $1"
	userCouponSelect = "SELECT id, user_id, coupon_id, order_id, issued_at, used_at, expires_at FROM user_coupons"
)

type CouponRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewCouponRepository(db DBTX, logger *slog.Logger) *CouponRepository {
	return &CouponRepository{db: db, logger: logger}
}

func (r *CouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	return r.find(ctx, couponSelect, id)
}

// FindByIDForUpdate serializes issuance per coupon: the quota check and the per-user duplicate check
// both happen while this row lock is held.
func (r *CouponRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	return r.find(ctx, couponSelect+forUpdate, id)
}

func (r *CouponRepository) find(ctx context.Context, query string, id uuid.UUID) (*coupon.Coupon, error) {
	var (
		couponID             uuid.UUID
		name                 string
		rate, total, issued  int
		expiresAt            time.Time
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&couponID, &name, &rate, &total, &issued, &expiresAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapErr(r.logger, err, coupon.ErrCouponNotFound, "failed to get coupon "+id.String())
	}
	return coupon.ReconstructCoupon(couponID, name, rate, total, issued, expiresAt, createdAt, updatedAt)
}

func (r *CouponRepository) Save(ctx context.Context, c *coupon.Coupon) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE coupons SET issued_quantity = $2, updated_at = $3 WHERE id = $1",
		c.ID(), c.IssuedQuantity(), c.UpdatedAt(),
	)
	if err != nil {
		return mapErr(r.logger, err, nil, "failed to save coupon "+c.ID().String())
	}
	return expectOneRow(tag, coupon.ErrCouponNotFound, "coupon "+c.ID().String())
}

type UserCouponRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewUserCouponRepository(db DBTX, logger *slog.Logger) *UserCouponRepository {
	return &UserCouponRepository{db: db, logger: logger}
}

func (r *UserCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*coupon.UserCoupon, error) {
	return r.find(ctx, userCouponSelect+" WHERE id = $1", id)
}

func (r *UserCouponRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*coupon.UserCoupon, error) {
	return r.find(ctx, userCouponSelect+" WHERE id = $1"+forUpdate, id)
}

func (r *UserCouponRepository) find(ctx context.Context, query string, id uuid.UUID) (*coupon.UserCoupon, error) {
	uc, err := scanUserCoupon(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errs.IsInvariant(err) {
			return nil, err
		}
		return nil, mapErr(r.logger, err, coupon.ErrCouponNotFound, "failed to get user coupon "+id.String())
	}
	return uc, nil
}

func (r *UserCouponRepository) ExistsByUserAndCoupon(ctx context.Context, userID, couponID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM user_coupons WHERE user_id = $1 AND coupon_id = $2)",
		userID, couponID,
	).Scan(&exists)
	if err != nil {
		return false, mapErr(r.logger, err, nil, "failed to check user coupon")
	}
	return exists, nil
}

func (r *UserCouponRepository) Create(ctx context.Context, uc *coupon.UserCoupon) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO user_coupons (id, user_id, coupon_id, order_id, issued_at, used_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		uc.ID(), uc.UserID(), uc.CouponID(), pgconv.UUIDPtrToPgtype(uc.OrderID()),
		uc.IssuedAt(), pgconv.TimePtrToPgtype(uc.UsedAt()), uc.ExpiresAt(),
	)
	if err != nil {
		if infra.KindOf(err) == infra.KindDuplicateKey {
			return errs.Wrap(coupon.ErrAlreadyIssued, "user coupon unique key")
		}
		return mapErr(r.logger, err, nil, "failed to create user coupon")
	}
	return nil
}

func (r *UserCouponRepository) Save(ctx context.Context, uc *coupon.UserCoupon) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE user_coupons SET order_id = $2, used_at = $3 WHERE id = $1",
		uc.ID(), pgconv.UUIDPtrToPgtype(uc.OrderID()), pgconv.TimePtrToPgtype(uc.UsedAt()),
	)
	if err != nil {
		return mapErr(r.logger, err, nil, "failed to save user coupon "+uc.ID().String())
	}
	return expectOneRow(tag, coupon.ErrCouponNotFound, "user coupon "+uc.ID().String())
}

func (r *UserCouponRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*coupon.UserCoupon, error) {
	rows, err := r.db.Query(ctx, userCouponSelect+" WHERE user_id = $1 ORDER BY issued_at DESC, id", userID)
	if err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to list user coupons")
	}
	defer rows.Close()

	var out []*coupon.UserCoupon
	for rows.Next() {
		uc, err := scanUserCoupon(rows)
		if err != nil {
			if errs.IsInvariant(err) {
				return nil, err
			}
			return nil, mapErr(r.logger, err, nil, "failed to scan user coupon")
		}
		out = append(out, uc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to iterate user coupons")
	}
	return out, nil
}

func scanUserCoupon(row rowScanner) (*coupon.UserCoupon, error) {
	var (
		id, userID, couponID uuid.UUID
		orderID              pgtype.UUID
		issuedAt, expiresAt  time.Time
		usedAt               pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &couponID, &orderID, &issuedAt, &usedAt, &expiresAt); err != nil {
		return nil, err
	}
	return coupon.ReconstructUserCoupon(id, userID, couponID, pgconv.UUIDPtrFromPgtype(orderID), issuedAt, pgconv.TimePtrFromPgtype(usedAt), expiresAt)
}
