package kafka

import (
	"context"
	"time"

	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/commands"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes synchronously so the outbox relay only marks events the brokers acknowledged.
// Topic is chosen per message; the key keeps one aggregate on one partition.
type Producer struct {
	w       messageWriter
	timeout time.Duration
}

var _ commands.EventPublisher = (*Producer)(nil)

func NewProducer(cfg config.KafkaConfig) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           cfg.WriteTimeout,
		Transport:              &kafka.Transport{ClientID: cfg.ClientID},
	}, cfg.WriteTimeout)
}

func newProducer(w messageWriter, timeout time.Duration) *Producer {
	return &Producer{w: w, timeout: timeout}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	err := p.w.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return errs.Wrapf(err, "publish to %s", topic)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}
