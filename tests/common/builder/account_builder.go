//go:build unit || e2e

package builder

import (
	"time"

	"commerce-core/internal/domain/ledger"

	"github.com/google/uuid"
)

type AccountBuilder struct {
	UserID  uuid.UUID
	Name    string
	Balance int64
	Now     time.Time
}

func NewAccountBuilder() *AccountBuilder {
	return &AccountBuilder{
		UserID:  uuid.New(),
		Name:    "Test User",
		Balance: 100000,
		Now:     BaseTime,
	}
}

func (a *AccountBuilder) With(mutate func(*AccountBuilder)) *AccountBuilder {
	mutate(a)
	return a
}

func (a *AccountBuilder) BuildDomain() (*ledger.Account, error) {
	return ledger.ReconstructAccount(a.UserID, a.Name, a.Balance, a.Now, a.Now)
}

func (a *AccountBuilder) MustBuild() *ledger.Account {
	acc, err := a.BuildDomain()
	if err != nil {
		panic(err)
	}
	return acc
}
