package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-core/internal/domain/event"
	"commerce-core/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OutboxRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewOutboxRepository(db DBTX, logger *slog.Logger) *OutboxRepository {
	return &OutboxRepository{db: db, logger: logger}
}

func (r *OutboxRepository) Append(ctx context.Context, events ...event.Outbox) error {
	for _, ev := range events {
		_, err := r.db.Exec(ctx,
			`INSERT INTO outbox_events (id, topic, event_key, event_type, payload, occurred_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			ev.ID, ev.Topic, ev.Key, ev.Type, ev.Payload, ev.OccurredAt,
		)
		if err != nil {
			return mapErr(r.logger, err, nil, "failed to append outbox event")
		}
	}
	return nil
}

// ClaimUnpublished skips rows locked by a concurrent relay so two relays never publish the same batch.
func (r *OutboxRepository) ClaimUnpublished(ctx context.Context, limit int) ([]event.Outbox, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, topic, event_key, event_type, payload, occurred_at, published_at
		   FROM outbox_events
		  WHERE published_at IS NULL
		  ORDER BY seq
		  LIMIT $1
		  FOR UPDATE SKIP LOCKED`,
		limit,
	)
	if err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to claim outbox events")
	}
	defer rows.Close()

	var out []event.Outbox
	for rows.Next() {
		var (
			ev          event.Outbox
			publishedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&ev.ID, &ev.Topic, &ev.Key, &ev.Type, &ev.Payload, &ev.OccurredAt, &publishedAt); err != nil {
			return nil, mapErr(r.logger, err, nil, "failed to scan outbox event")
		}
		ev.PublishedAt = pgconv.TimePtrFromPgtype(publishedAt)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(r.logger, err, nil, "failed to iterate outbox events")
	}
	return out, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		"UPDATE outbox_events SET published_at = $2 WHERE id = ANY($1::uuid[])",
		idStrings(ids), at,
	)
	if err != nil {
		return mapErr(r.logger, err, nil, "failed to mark outbox events published")
	}
	return nil
}
