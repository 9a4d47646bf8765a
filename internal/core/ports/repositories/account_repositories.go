package repositories

import (
	"context"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// AccountReader resolves account reference data
type AccountReader interface {
	// FindAccountByID returns apperrors.ErrNotFound for unknown ids.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
}

// AccountWriter loads chart-of-accounts reference data
type AccountWriter interface {
	// SaveAccount inserts or replaces an account keyed by id.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
