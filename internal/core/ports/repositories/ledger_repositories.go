package repositories

import (
	"context"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// LedgerReader defines read operations on the general ledger
type LedgerReader interface {
	ListLedgerEntriesByJournalEntryID(ctx context.Context, journalEntryID string) ([]domain.GeneralLedgerEntry, error)
}

// LedgerAppender is the only write path into the general ledger. Rows are
// never updated or deleted.
type LedgerAppender interface {
	AppendLedgerEntries(ctx context.Context, entries []domain.GeneralLedgerEntry) error
}

// LedgerRepository combines ledger reads and appends
type LedgerRepository interface {
	LedgerReader
	LedgerAppender
}
