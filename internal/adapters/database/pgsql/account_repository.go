package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_ledger/internal/models"
	"github.com/SscSPs/erp_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxAccountRepository struct {
	q Querier
}

func newPgxAccountRepository(q Querier) *PgxAccountRepository {
	return &PgxAccountRepository{q: q}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var m models.Account
	err := r.q.QueryRow(ctx, `
		SELECT account_id, code, name, account_type, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		WHERE account_id = $1;
	`, accountID).Scan(
		&m.AccountID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, dbError("failed to find account "+accountID, err)
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// SaveAccount upserts by id, keeping the original creation audit fields.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	_, err := r.q.Exec(ctx, `
		INSERT INTO accounts (account_id, code, name, account_type, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (account_id) DO UPDATE
		SET code = EXCLUDED.code,
		    name = EXCLUDED.name,
		    account_type = EXCLUDED.account_type,
		    is_active = EXCLUDED.is_active,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`,
		m.AccountID,
		m.Code,
		m.Name,
		m.AccountType,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return dbError("failed to save account "+account.AccountID, err)
	}
	return nil
}
