//go:build unit

package commands_test

import (
	"context"
	"math"
	"testing"

	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/pkg/ptr"
	"commerce-core/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestChargeBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedAccount(t, 1000)

	log, err := f.balance.ChargeBalance(ctx, commands.BalanceInput{UserID: user.UserID(), Amount: 4000, Note: ptr.Of("top-up")})
	require.NoError(t, err)
	assert.Equal(t, ledger.CodeCharge, log.Code())
	assert.Equal(t, int64(1000), log.BeforeAmount())
	assert.Equal(t, int64(5000), log.AfterAmount())
	assert.Equal(t, int64(5000), f.account(t, user.UserID()).Balance())

	_, err = f.balance.ChargeBalance(ctx, commands.BalanceInput{UserID: user.UserID(), Amount: 0})
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = f.balance.ChargeBalance(ctx, commands.BalanceInput{UserID: uuid.New(), Amount: 100})
	require.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestChargeBalance_AmountBeyondInt64(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedAccount(t, 10)

	_, err := f.balance.ChargeBalance(ctx, commands.BalanceInput{UserID: user.UserID(), Amount: math.MaxInt64})
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	assert.False(t, errs.IsInvariant(err))
	assert.Equal(t, "PAY004", errs.CodeOf(err))
	assert.Equal(t, int64(10), f.account(t, user.UserID()).Balance())
	assert.Empty(t, f.store.BalanceLogs(user.UserID()))
}

func TestAdjustBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("signed correction", func(t *testing.T) {
		f := newFixture(t)
		user := f.seedAccount(t, 5000)

		log, err := f.balance.AdjustBalance(ctx, commands.BalanceInput{UserID: user.UserID(), Amount: -2000, RefID: ptr.Of("TICKET-7")})
		require.NoError(t, err)
		assert.Equal(t, ledger.CodeAdjust, log.Code())
		assert.Equal(t, int64(3000), f.account(t, user.UserID()).Balance())
	})

	t.Run("below zero is rejected without a log entry", func(t *testing.T) {
		f := newFixture(t)
		user := f.seedAccount(t, 5000)

		_, err := f.balance.AdjustBalance(ctx, commands.BalanceInput{UserID: user.UserID(), Amount: -6000})
		require.ErrorIs(t, err, ledger.ErrNegativeBalance)
		assert.Equal(t, int64(5000), f.account(t, user.UserID()).Balance())
		assert.Empty(t, f.store.BalanceLogs(user.UserID()))
		assert.Empty(t, f.store.OutboxEvents())
	})
}

func TestLedger_ConcurrentChangesFormOneChain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedAccount(t, 0)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 40; i++ {
		g.Go(func() error {
			_, err := f.balance.ChargeBalance(gctx, commands.BalanceInput{UserID: user.UserID(), Amount: 250})
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(10000), f.account(t, user.UserID()).Balance())
	logs := f.store.BalanceLogs(user.UserID())
	require.Len(t, logs, 40)
	assertChain(t, logs, 0)
}
