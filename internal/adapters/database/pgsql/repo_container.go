package pgsql

import (
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every repository to dbPool. Reads outside a
// unit of work go straight to the pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	base := &BaseRepository{Pool: dbPool}
	return portsrepo.RepositoryProvider{
		UnitOfWork:   newUnitOfWork(base),
		JournalRepo:  newPgxJournalRepository(dbPool),
		LedgerRepo:   newPgxLedgerRepository(dbPool),
		AccountRepo:  newPgxAccountRepository(dbPool),
		TemplateRepo: newPgxRecurringRepository(dbPool),
		OutboxRepo:   newPgxOutboxRepository(dbPool),
		Close: func() error {
			dbPool.Close()
			return nil
		},
	}
}
