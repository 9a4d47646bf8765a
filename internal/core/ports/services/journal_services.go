package services

import (
	"context"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	GetJournalEntry(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error)

	// ListLedgerEntries returns the ledger rows a posted entry produced.
	ListLedgerEntries(ctx context.Context, journalEntryID string) ([]domain.GeneralLedgerEntry, error)
}

// JournalWriterSvc defines write operations on draft journal entries
type JournalWriterSvc interface {
	CreateDraftJournalEntry(ctx context.Context, req dto.CreateDraftJournalEntryRequest) (*domain.JournalEntry, error)
	AppendLines(ctx context.Context, req dto.AppendLinesRequest) (*domain.JournalEntry, error)

	// CreateReversal drafts an entry with every line of a posted entry swapped.
	CreateReversal(ctx context.Context, req dto.CreateReversalRequest) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
