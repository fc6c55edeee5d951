package commands

import (
	"context"
	"log/slog"

	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/pkg/metrics"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	producerName       = "commerce-core"
	defaultOutboxBatch = 100
)

type OutboxRelay struct {
	uow       shared.UnitOfWork
	publisher EventPublisher
	clock     clock.Clock
	metrics   metrics.Recorder
	logger    *slog.Logger
	batchSize int
}

func NewOutboxRelay(
	uow shared.UnitOfWork,
	publisher EventPublisher,
	clock clock.Clock,
	rec metrics.Recorder,
	logger *slog.Logger,
	cfg config.OutboxConfig,
) *OutboxRelay {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultOutboxBatch
	}
	return &OutboxRelay{uow: uow, publisher: publisher, clock: clock, metrics: rec, logger: logger, batchSize: batch}
}

// Flush publishes one batch of unpublished events and returns how many were marked published.
// Events stay claimed for the whole transaction, so concurrent relays split the backlog.
// Events are published at least once: a crash after publish and before commit republishes them.
func (r *OutboxRelay) Flush(ctx context.Context) (int, error) {
	var published int
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		published = 0
		events, err := tx.Outbox().ClaimUnpublished(ctx, r.batchSize)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(events))
		for _, ev := range events {
			value, err := ev.Envelope(producerName)
			if err != nil {
				return err
			}
			if err := r.publisher.Publish(ctx, ev.Topic, ev.Key, value); err != nil {
				r.metrics.OutboxFailed()
				// keep what already went out; the rest is retried next tick
				r.logger.Warn("failed to publish outbox event", "event_id", ev.ID, "type", ev.Type, "error", err)
				break
			}
			ids = append(ids, ev.ID)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Outbox().MarkPublished(ctx, ids, r.clock.Now()); err != nil {
			return errs.Wrap(err, "mark outbox events published")
		}
		published = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if published > 0 {
		r.metrics.OutboxPublished(published)
	}
	return published, nil
}
