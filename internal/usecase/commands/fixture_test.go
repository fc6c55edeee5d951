//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/domain/product"
	"commerce-core/internal/infra/memory"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/metrics"
	"commerce-core/internal/usecase/commands"
	"commerce-core/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memory.Store
	clock    *clock.MockClock
	orders   commands.OrderCommands
	coupons  commands.CouponCommands
	balance  commands.BalanceCommands
	cart     commands.CartCommands
	sweeper  commands.OrderSweeper
	relay    *commands.OutboxRelay
	producer *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.NewTestConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	uow := memory.NewUnitOfWork(store, 5*time.Second)
	clk := clock.NewMockClock(builder.BaseTime)
	rec := metrics.NewNop()
	pub := &fakePublisher{}

	return &fixture{
		store:    store,
		clock:    clk,
		orders:   commands.NewOrderCommands(uow, clk, rec, logger, cfg.Order),
		coupons:  commands.NewCouponCommands(uow, clk, rec, logger),
		balance:  commands.NewBalanceCommands(uow, clk, rec, logger),
		cart:     commands.NewCartCommands(uow, clk, rec, logger),
		sweeper:  commands.NewOrderSweeper(uow, clk, rec, logger, cfg.Sweeper),
		relay:    commands.NewOutboxRelay(uow, pub, clk, rec, logger, cfg.Outbox),
		producer: pub,
	}
}

func (f *fixture) seedProduct(t *testing.T, price int64, stocks ...int64) (*product.Product, []*inventory.Variant) {
	t.Helper()
	p := builder.NewProductBuilder().With(func(b *builder.ProductBuilder) { b.Price = price }).BuildDomain()
	variants := make([]*inventory.Variant, len(stocks))
	for i, s := range stocks {
		variants[i] = builder.NewVariantBuilder().ForProduct(p).With(func(b *builder.VariantBuilder) { b.Stock = s }).MustBuild()
	}
	f.store.AddProduct(p, variants...)
	return p, variants
}

func (f *fixture) seedAccount(t *testing.T, balance int64) *ledger.Account {
	t.Helper()
	a := builder.NewAccountBuilder().With(func(b *builder.AccountBuilder) { b.Balance = balance }).MustBuild()
	f.store.AddAccount(a)
	return a
}

func (f *fixture) seedCoupon(t *testing.T, rate, total int) *coupon.Coupon {
	t.Helper()
	c := builder.NewCouponBuilder().With(func(b *builder.CouponBuilder) {
		b.DiscountRate = rate
		b.TotalQuantity = total
	}).MustBuild()
	f.store.AddCoupon(c)
	return c
}

func (f *fixture) variant(t *testing.T, id uuid.UUID) *inventory.Variant {
	t.Helper()
	v, ok := f.store.Variant(id)
	require.True(t, ok)
	return v
}

func (f *fixture) account(t *testing.T, id uuid.UUID) *ledger.Account {
	t.Helper()
	a, ok := f.store.Account(id)
	require.True(t, ok)
	return a
}

func line(v *inventory.Variant, qty int64) commands.OrderLineInput {
	return commands.OrderLineInput{VariantID: v.ID(), Quantity: qty}
}

type published struct {
	Topic string
	Key   string
	Value []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	sent   []published
	failAt int // 1-based index of the publish call that fails, 0 = never
	calls  int
}

func (p *fakePublisher) Publish(_ context.Context, topic, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.failAt > 0 && p.calls == p.failAt {
		return errBrokerDown
	}
	p.sent = append(p.sent, published{Topic: topic, Key: key, Value: value})
	return nil
}

func (p *fakePublisher) Sent() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]published, len(p.sent))
	copy(out, p.sent)
	return out
}
