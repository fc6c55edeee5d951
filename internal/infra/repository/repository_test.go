//go:build unit

package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"commerce-core/internal/domain/cart"
	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/infra"
	"commerce-core/internal/pkg/pgconv"
	"commerce-core/internal/usecase/shared"
	"commerce-core/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDBTX struct {
	mock.Mock
}

func (m *MockDBTX) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(pgconn.CommandTag), mockArgs.Error(1)
}

func (m *MockDBTX) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	mockArgs := m.Called(ctx, query, args)
	rows, _ := mockArgs.Get(0).(pgx.Rows)
	return rows, mockArgs.Error(1)
}

func (m *MockDBTX) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(pgx.Row)
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRepository_NotFoundMapsToDomainError(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		call  func(db DBTX) error
		errIs error
	}{
		{
			name: "account",
			call: func(db DBTX) error {
				_, err := NewAccountRepository(db, discardLogger()).FindByIDForUpdate(ctx, uuid.New())
				return err
			},
			errIs: ledger.ErrUserNotFound,
		},
		{
			name: "variant",
			call: func(db DBTX) error {
				_, err := NewVariantRepository(db, discardLogger()).FindByID(ctx, uuid.New())
				return err
			},
			errIs: inventory.ErrVariantNotFound,
		},
		{
			name: "coupon",
			call: func(db DBTX) error {
				_, err := NewCouponRepository(db, discardLogger()).FindByIDForUpdate(ctx, uuid.New())
				return err
			},
			errIs: coupon.ErrCouponNotFound,
		},
		{
			name: "cart item",
			call: func(db DBTX) error {
				_, err := NewCartItemRepository(db, discardLogger()).FindByID(ctx, uuid.New())
				return err
			},
			errIs: cart.ErrCartItemNotFound,
		},
		{
			name: "cart item by user and variant",
			call: func(db DBTX) error {
				_, err := NewCartItemRepository(db, discardLogger()).FindByUserAndVariant(ctx, uuid.New(), uuid.New())
				return err
			},
			errIs: cart.ErrCartItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(MockDBTX)
			db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(errRow{err: pgx.ErrNoRows})

			err := tt.call(db)
			require.ErrorIs(t, err, tt.errIs)
			db.AssertExpectations(t)
		})
	}
}

func TestRepository_ForUpdateQueries(t *testing.T) {
	db := new(MockDBTX)
	db.On("QueryRow", mock.Anything, mock.MatchedBy(func(q string) bool {
		return len(q) > len(forUpdate) && q[len(q)-len(forUpdate):] == forUpdate
	}), mock.Anything).Return(errRow{err: pgx.ErrNoRows}).Once()

	_, err := NewVariantRepository(db, discardLogger()).FindByIDForUpdate(context.Background(), uuid.New())
	require.ErrorIs(t, err, inventory.ErrVariantNotFound)
	db.AssertExpectations(t)
}

func TestUserCouponRepository_CreateDuplicate(t *testing.T) {
	cp := builder.NewCouponBuilder().MustBuild()
	uc, err := coupon.IssueUserCoupon(uuid.New(), cp, builder.BaseTime)
	require.NoError(t, err)

	tests := []struct {
		name    string
		execErr error
		check   func(t *testing.T, err error)
	}{
		{
			name: "success",
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:    "unique violation means already issued",
			execErr: &pgconn.PgError{Code: pgconv.CodeUniqueViolation},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, coupon.ErrAlreadyIssued)
			},
		},
		{
			name:    "other failure stays a repository error",
			execErr: &pgconn.PgError{Code: pgconv.CodeForeignKeyViolation},
			check: func(t *testing.T, err error) {
				assert.True(t, infra.IsKind(err, infra.KindForeignKeyViolated))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(MockDBTX)
			db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("INSERT 0 1"), tt.execErr)

			tt.check(t, NewUserCouponRepository(db, discardLogger()).Create(context.Background(), uc))
			db.AssertExpectations(t)
		})
	}
}

func TestVariantRepository_SaveMissingRow(t *testing.T) {
	v := builder.NewVariantBuilder().MustBuild()

	db := new(MockDBTX)
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := NewVariantRepository(db, discardLogger()).Save(context.Background(), v)
	require.ErrorIs(t, err, inventory.ErrVariantNotFound)
}

func TestCartItemRepository_MissingRow(t *testing.T) {
	it, err := cart.NewItem(uuid.New(), uuid.New(), 1, builder.BaseTime)
	require.NoError(t, err)

	tests := []struct {
		name string
		tag  string
		call func(r *CartItemRepository) error
	}{
		{name: "save", tag: "UPDATE 0", call: func(r *CartItemRepository) error { return r.Save(context.Background(), it) }},
		{name: "delete", tag: "DELETE 0", call: func(r *CartItemRepository) error { return r.Delete(context.Background(), it.ID()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(MockDBTX)
			db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag(tt.tag), nil)

			require.ErrorIs(t, tt.call(NewCartItemRepository(db, discardLogger())), cart.ErrCartItemNotFound)
			db.AssertExpectations(t)
		})
	}
}

func TestVariantRepository_EmptyLookupsSkipQuery(t *testing.T) {
	db := new(MockDBTX)
	r := NewVariantRepository(db, discardLogger())

	byID, err := r.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, byID)

	byProduct, err := r.ListByProducts(context.Background(), []uuid.UUID{})
	require.NoError(t, err)
	assert.Empty(t, byProduct)

	db.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestRepository_SerializationFailureKeepsSQLState(t *testing.T) {
	db := new(MockDBTX)
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.CommandTag{}, &pgconn.PgError{Code: pgconv.CodeSerializationFailure})

	acc := builder.NewAccountBuilder().MustBuild()
	err := NewAccountRepository(db, discardLogger()).Save(context.Background(), acc)

	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	assert.Equal(t, pgconv.CodeSerializationFailure, pgconv.SQLState(err))
}

func TestBalanceLogRepository_CountFailure(t *testing.T) {
	db := new(MockDBTX)
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(errRow{err: assert.AnError})

	_, _, err := NewBalanceLogRepository(db, discardLogger()).List(context.Background(), builderFilter())
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindDBFailure))
}

func builderFilter() shared.BalanceLogFilter {
	from := time.Now().Add(-time.Hour)
	return shared.BalanceLogFilter{UserID: uuid.New(), From: &from}
}
