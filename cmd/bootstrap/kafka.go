package bootstrap

import (
	"context"
	"log/slog"

	"commerce-core/internal/infra/kafka"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/usecase/commands"

	"go.uber.org/fx"
)

var KafkaModule = fx.Module("kafka",
	fx.Provide(
		NewEventPublisher,
	),
)

// NewEventPublisher returns nil when KAFKA_BROKERS is empty; the outbox relay is then not started.
func NewEventPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) commands.EventPublisher {
	if !cfg.Kafka.Enabled() {
		logger.Warn("kafka is not configured; outbox events stay unpublished")
		return nil
	}

	producer := kafka.NewProducer(cfg.Kafka)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return producer.Close()
		},
	})

	return producer
}
