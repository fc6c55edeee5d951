package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-core/internal/domain/ledger"

	"github.com/google/uuid"
)

const accountSelect = "SELECT id, name, balance, created_at, updated_at FROM users WHERE id = $1"

type AccountRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewAccountRepository(db DBTX, logger *slog.Logger) *AccountRepository {
	return &AccountRepository{db: db, logger: logger}
}

func (r *AccountRepository) FindByID(ctx context.Context, userID uuid.UUID) (*ledger.Account, error) {
	return r.find(ctx, accountSelect, userID)
}

func (r *AccountRepository) FindByIDForUpdate(ctx context.Context, userID uuid.UUID) (*ledger.Account, error) {
	return r.find(ctx, accountSelect+forUpdate, userID)
}

func (r *AccountRepository) find(ctx context.Context, query string, userID uuid.UUID) (*ledger.Account, error) {
	var (
		id                   uuid.UUID
		name                 string
		balance              int64
		createdAt, updatedAt time.Time
	)
	if err := r.db.QueryRow(ctx, query, userID).Scan(&id, &name, &balance, &createdAt, &updatedAt); err != nil {
		return nil, mapErr(r.logger, err, ledger.ErrUserNotFound, "failed to get user "+userID.String())
	}
	return ledger.ReconstructAccount(id, name, balance, createdAt, updatedAt)
}

func (r *AccountRepository) Save(ctx context.Context, a *ledger.Account) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE users SET balance = $2, updated_at = $3 WHERE id = $1",
		a.UserID(), a.Balance(), a.UpdatedAt(),
	)
	if err != nil {
		return mapErr(r.logger, err, nil, "failed to save user balance "+a.UserID().String())
	}
	return expectOneRow(tag, ledger.ErrUserNotFound, "user "+a.UserID().String())
}
