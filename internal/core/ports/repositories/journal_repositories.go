package repositories

import (
	"context"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// JournalEntryReader defines read operations for journal entries
type JournalEntryReader interface {
	// FindJournalEntryByID loads the header and its lines ordered by line number.
	FindJournalEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error)

	// FindLinesByJournalEntryID loads only the lines of an entry.
	FindLinesByJournalEntryID(ctx context.Context, journalEntryID string) ([]domain.JournalEntryLine, error)
}

// JournalEntryLocker reads an entry and holds it against concurrent writers
// until the surrounding unit of work ends.
type JournalEntryLocker interface {
	FindJournalEntryByIDForUpdate(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error)
}

// JournalEntryWriter defines write operations for journal entries
type JournalEntryWriter interface {
	// InsertJournalEntry stores a new draft and its lines.
	InsertJournalEntry(ctx context.Context, entry *domain.JournalEntry) error

	// UpdateDraftJournalEntry rewrites a draft header and lines. It returns
	// apperrors.ErrConflict when the stored version differs from expectedVersion
	// or the stored entry is already posted.
	UpdateDraftJournalEntry(ctx context.Context, entry *domain.JournalEntry, expectedVersion int) error

	// MarkJournalEntryPosted persists the posted status. It returns
	// apperrors.ErrConflict when the stored version differs from expectedVersion.
	MarkJournalEntryPosted(ctx context.Context, entry *domain.JournalEntry, expectedVersion int) error
}

// JournalEntryRepository combines all journal entry repository interfaces
type JournalEntryRepository interface {
	JournalEntryReader
	JournalEntryLocker
	JournalEntryWriter
}
