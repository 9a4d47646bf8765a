package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// Begin starts a new database transaction
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// Stores are the repositories bound to a single unit of work. Everything
// written through them commits or rolls back together.
type Stores struct {
	Journals  JournalEntryRepository
	Ledger    LedgerRepository
	Templates RecurringTemplateRepository
	Outbox    OutboxWriter
}

// UnitOfWork runs fn atomically. Returning an error from fn, or a failed
// commit, discards every write made through the supplied Stores.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
