package repository

import (
	"context"
	"log/slog"

	"commerce-core/internal/infra"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by pgx.Tx and *pgxpool.Pool.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const forUpdate = " FOR UPDATE"

// mapErr turns "no rows" into the domain sentinel and everything else into a RepositoryError.
func mapErr(logger *slog.Logger, err error, notFound error, msg string) error {
	if pgconv.IsNoRows(err) && notFound != nil {
		return errs.Wrap(notFound, msg)
	}
	return infra.WrapRepoErr(logger, infra.KindOf(err), msg, err)
}

func expectOneRow(tag pgconn.CommandTag, notFound error, msg string) error {
	if tag.RowsAffected() == 0 {
		return errs.Wrap(notFound, msg)
	}
	return nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
