package components

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/metrics"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/shared"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Invoke(
		StartSweeper,
		StartOutboxRelay,
	),
)

func StartSweeper(lc fx.Lifecycle, cfg config.Config, sweeper commands.OrderSweeper, logger *slog.Logger) {
	if !cfg.Sweeper.Enabled {
		logger.Info("order sweeper disabled")
		return
	}
	runEvery(lc, logger.With("worker", "sweeper"), cfg.Sweeper.Interval, func(ctx context.Context) error {
		res, err := sweeper.ExpireOverdueOrders(ctx)
		if res.Expired > 0 || res.Failed > 0 {
			logger.Info("expired overdue orders", "expired", res.Expired, "skipped", res.Skipped, "failed", res.Failed)
		}
		return err
	})
}

type OutboxRelayParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	UoW       shared.UnitOfWork
	Publisher commands.EventPublisher
	Clock     clock.Clock
	Metrics   metrics.Recorder
	Logger    *slog.Logger
}

func StartOutboxRelay(p OutboxRelayParams) {
	if p.Publisher == nil {
		return
	}
	relay := commands.NewOutboxRelay(p.UoW, p.Publisher, p.Clock, p.Metrics, p.Logger, p.Config.Outbox)
	runEvery(p.Lifecycle, p.Logger.With("worker", "outbox"), p.Config.Outbox.Interval, func(ctx context.Context) error {
		_, err := relay.Flush(ctx)
		return err
	})
}

// runEvery calls tick on a fixed interval between the fx start and stop hooks.
// Stop cancels the in-flight tick and waits for it to return.
func runEvery(lc fx.Lifecycle, logger *slog.Logger, interval time.Duration, tick func(ctx context.Context) error) {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if err := tick(ctx); err != nil && ctx.Err() == nil {
							logger.Error("worker tick failed", "error", err)
						}
					}
				}
			}()
			logger.Info("worker started", "interval", interval)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
