package commands

import (
	"context"
	"log/slog"
	"time"

	"commerce-core/internal/domain/event"
	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/domain/order"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/metrics"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

const defaultSweepBatch = 100

type OrderSweeper interface {
	ExpireOverdueOrders(ctx context.Context) (SweepResult, error)
}

type orderSweeperImpl struct {
	uow       shared.UnitOfWork
	clock     clock.Clock
	metrics   metrics.Recorder
	logger    *slog.Logger
	batchSize int
}

func NewOrderSweeper(uow shared.UnitOfWork, clock clock.Clock, rec metrics.Recorder, logger *slog.Logger, cfg config.SweeperConfig) OrderSweeper {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultSweepBatch
	}
	return &orderSweeperImpl{uow: uow, clock: clock, metrics: rec, logger: logger, batchSize: batch}
}

// ExpireOverdueOrders expires one batch. Each order gets its own transaction, and a failure on one
// order does not stop the others.
func (s *orderSweeperImpl) ExpireOverdueOrders(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	start := time.Now()

	var ids []uuid.UUID
	err := s.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		ids, err = tx.Orders().FindOverdueIDs(ctx, s.clock.Now(), s.batchSize)
		return err
	})
	if err != nil {
		return result, err
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		expired, err := s.expireOne(ctx, id)
		switch {
		case err != nil:
			result.Failed++
			s.logger.Error("failed to expire order", "order_id", id, "error", err)
		case expired:
			result.Expired++
			s.metrics.OrderStatusChanged(order.StatusExpired.String())
		default:
			result.Skipped++
		}
	}

	s.metrics.SweepFinished(result.Expired, result.Skipped, result.Failed)
	s.metrics.ObserveCommand("expire_orders", metrics.OutcomeOK, time.Since(start))
	if len(ids) > 0 {
		s.logger.Info("sweep finished", "expired", result.Expired, "skipped", result.Skipped, "failed", result.Failed)
	}
	return result, nil
}

// expireOne re-checks the order under its row lock. An order that was paid, cancelled or already
// expired since the scan is skipped, so re-running a sweep never releases stock twice.
func (s *orderSweeperImpl) expireOne(ctx context.Context, id uuid.UUID) (bool, error) {
	var expired bool
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		expired = false
		now := s.clock.Now()

		o, err := tx.Orders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !o.IsOverdue(now) {
			return nil
		}
		if err := applyToLines(ctx, tx, o, now, (*inventory.Variant).Release); err != nil {
			return err
		}
		if err := o.Expire(now); err != nil {
			return err
		}
		if err := tx.Orders().Save(ctx, o); err != nil {
			return err
		}
		ev, err := orderReleasedEvent(o, event.TypeOrderExpired, now)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Append(ctx, ev); err != nil {
			return err
		}
		expired = true
		return nil
	})
	return expired, err
}
