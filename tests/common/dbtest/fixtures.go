//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func CreateTestAccount(t *testing.T, db Querier, name string, balance int64) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO users (id, name, balance) VALUES ($1, $2, $3)", userID, name, balance)
	require.NoError(t, err)
	return userID
}

// CreateTestProduct inserts a product with one variant per stock value and returns the variant ids in order
func CreateTestProduct(t *testing.T, db Querier, name string, price int64, stocks ...int64) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	productID := uuid.New()
	_, err := db.Exec(ctx, "INSERT INTO products (id, name, price) VALUES ($1, $2, $3)", productID, name, price)
	require.NoError(t, err)

	variantIDs := make([]uuid.UUID, len(stocks))
	for i, stock := range stocks {
		variantIDs[i] = uuid.New()
		_, err := db.Exec(ctx,
			"INSERT INTO product_variants (id, product_id, name, stock) VALUES ($1, $2, $3, $4)",
			variantIDs[i], productID, fmt.Sprintf("option-%d", i+1), stock)
		require.NoError(t, err)
	}
	return productID, variantIDs
}

func CreateTestCoupon(t *testing.T, db Querier, name string, rate, total int, expiresAt time.Time) uuid.UUID {
	t.Helper()

	couponID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO coupons (id, name, discount_rate, total_quantity, expires_at) VALUES ($1, $2, $3, $4, $5)",
		couponID, name, rate, total, expiresAt)
	require.NoError(t, err)
	return couponID
}

func VariantStock(t *testing.T, db Querier, variantID uuid.UUID) (stock, reserved int64) {
	t.Helper()
	err := db.QueryRow(context.Background(),
		"SELECT stock, reserved_stock FROM product_variants WHERE id = $1", variantID).Scan(&stock, &reserved)
	require.NoError(t, err)
	return stock, reserved
}

func AccountBalance(t *testing.T, db Querier, userID uuid.UUID) int64 {
	t.Helper()
	var balance int64
	err := db.QueryRow(context.Background(), "SELECT balance FROM users WHERE id = $1", userID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

func CountRows(t *testing.T, db Querier, table, where string, args ...any) int {
	t.Helper()
	var n int
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	require.NoError(t, db.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
