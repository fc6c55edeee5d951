package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/pkg/pgconv"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// BalanceLogRepository only inserts and selects. The table trigger rejects UPDATE and DELETE.
type BalanceLogRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewBalanceLogRepository(db DBTX, logger *slog.Logger) *BalanceLogRepository {
	return &BalanceLogRepository{db: db, logger: logger}
}

func (r *BalanceLogRepository) Append(ctx context.Context, l *ledger.BalanceChangeLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO balance_change_logs (id, user_id, amount, before_amount, after_amount, code, note, ref_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID(), l.UserID(), l.Amount(), l.BeforeAmount(), l.AfterAmount(), l.Code().String(), l.Note(), l.RefID(), l.CreatedAt(),
	)
	if err != nil {
		return mapErr(r.logger, err, nil, "failed to append balance change log")
	}
	return nil
}

const balanceLogWhere = `
	WHERE user_id = $1
	  AND ($2::timestamptz IS NULL OR created_at >= $2)
	  AND ($3::timestamptz IS NULL OR created_at <= $3)
	  AND ($4::text IS NULL OR code = $4)
	  AND ($5::text IS NULL OR ref_id = $5)`

// List returns one page, newest first, and the total number of matching entries.
func (r *BalanceLogRepository) List(ctx context.Context, filter shared.BalanceLogFilter) ([]*ledger.BalanceChangeLog, int, error) {
	filter = filter.Normalize()
	var code *string
	if filter.Code != nil {
		c := filter.Code.String()
		code = &c
	}
	args := []any{filter.UserID, filter.From, filter.To, code, filter.RefID}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM balance_change_logs"+balanceLogWhere, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(r.logger, err, nil, "failed to count balance change logs")
	}

	rows, err := r.db.Query(ctx,
		"SELECT id, user_id, amount, before_amount, after_amount, code, note, ref_id, created_at FROM balance_change_logs"+
			balanceLogWhere+" ORDER BY seq DESC LIMIT $6 OFFSET $7",
		append(args, filter.Size, filter.Offset())...,
	)
	if err != nil {
		return nil, 0, mapErr(r.logger, err, nil, "failed to list balance change logs")
	}
	defer rows.Close()

	var out []*ledger.BalanceChangeLog
	for rows.Next() {
		var (
			id, userID            uuid.UUID
			amount, before, after int64
			code                  string
			note, refID           pgtype.Text
			createdAt             time.Time
		)
		if err := rows.Scan(&id, &userID, &amount, &before, &after, &code, &note, &refID, &createdAt); err != nil {
			return nil, 0, mapErr(r.logger, err, nil, "failed to scan balance change log")
		}
		l, err := ledger.ReconstructBalanceChangeLog(id, userID, amount, before, after, ledger.Code(code),
			pgconv.StringPtrFromPgtype(note), pgconv.StringPtrFromPgtype(refID), createdAt)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr(r.logger, err, nil, "failed to iterate balance change logs")
	}
	return out, total, nil
}

