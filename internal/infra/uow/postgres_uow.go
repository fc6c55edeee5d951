package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"commerce-core/internal/infra/repository"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/pkg/pgconv"
	"commerce-core/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 100 * time.Millisecond
)

type PostgresUoW struct {
	pool       *pgxpool.Pool
	logger     *slog.Logger
	maxRetries int
	baseDelay  time.Duration
}

func NewPostgresUoW(pool *pgxpool.Pool, logger *slog.Logger) shared.UnitOfWork {
	return &PostgresUoW{
		pool:       pool,
		logger:     logger,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
}

// ReadCommitted plus SELECT ... FOR UPDATE on every row that is read-checked-written.
// The closure is re-run from scratch on serialization failures and deadlocks, never on domain errors.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// Read-only transaction for consistent multi-table snapshots
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runReadOnlyTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		err = fn(ctx, newPgTx(pgxTx, u.logger))
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, u.maxRetries) {
			if attempt == u.maxRetries && isRetryableError(err) {
				u.logger.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, u.baseDelay)

		u.logger.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func (u *PostgresUoW) runReadOnlyTx(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, newPgTx(pgxTx, u.logger)); err != nil {
		return err
	}

	return pgxTx.Commit(ctx)
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	// mask high bit to keep the value positive
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- safe after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	switch pgconv.SQLState(err) {
	case pgconv.CodeSerializationFailure, pgconv.CodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx   repository.DBTX
	logger *slog.Logger

	// Lazy-initialized repositories
	productRepo    shared.ProductRepository
	variantRepo    shared.VariantRepository
	orderRepo      shared.OrderRepository
	couponRepo     shared.CouponRepository
	userCouponRepo shared.UserCouponRepository
	accountRepo    shared.AccountRepository
	balanceLogRepo shared.BalanceLogRepository
	outboxRepo     shared.OutboxRepository
	cartItemRepo   shared.CartItemRepository
}

func newPgTx(dbtx repository.DBTX, logger *slog.Logger) *pgTx {
	return &pgTx{dbtx: dbtx, logger: logger}
}

func (t *pgTx) Products() shared.ProductRepository {
	if t.productRepo == nil {
		t.productRepo = repository.NewProductRepository(t.dbtx, t.logger)
	}
	return t.productRepo
}

func (t *pgTx) Variants() shared.VariantRepository {
	if t.variantRepo == nil {
		t.variantRepo = repository.NewVariantRepository(t.dbtx, t.logger)
	}
	return t.variantRepo
}

func (t *pgTx) Orders() shared.OrderRepository {
	if t.orderRepo == nil {
		t.orderRepo = repository.NewOrderRepository(t.dbtx, t.logger)
	}
	return t.orderRepo
}

func (t *pgTx) Coupons() shared.CouponRepository {
	if t.couponRepo == nil {
		t.couponRepo = repository.NewCouponRepository(t.dbtx, t.logger)
	}
	return t.couponRepo
}

func (t *pgTx) UserCoupons() shared.UserCouponRepository {
	if t.userCouponRepo == nil {
		t.userCouponRepo = repository.NewUserCouponRepository(t.dbtx, t.logger)
	}
	return t.userCouponRepo
}

func (t *pgTx) Accounts() shared.AccountRepository {
	if t.accountRepo == nil {
		t.accountRepo = repository.NewAccountRepository(t.dbtx, t.logger)
	}
	return t.accountRepo
}

func (t *pgTx) BalanceLogs() shared.BalanceLogRepository {
	if t.balanceLogRepo == nil {
		t.balanceLogRepo = repository.NewBalanceLogRepository(t.dbtx, t.logger)
	}
	return t.balanceLogRepo
}

func (t *pgTx) Outbox() shared.OutboxRepository {
	if t.outboxRepo == nil {
		t.outboxRepo = repository.NewOutboxRepository(t.dbtx, t.logger)
	}
	return t.outboxRepo
}

func (t *pgTx) CartItems() shared.CartItemRepository {
	if t.cartItemRepo == nil {
		t.cartItemRepo = repository.NewCartItemRepository(t.dbtx, t.logger)
	}
	return t.cartItemRepo
}
