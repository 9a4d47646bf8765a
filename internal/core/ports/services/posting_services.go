package services

import (
	"context"

	"github.com/SscSPs/erp_ledger/internal/dto"
)

// PostingSvc turns a draft journal entry into general ledger rows.
type PostingSvc interface {
	// PostJournalEntry posts the entry atomically and returns its id.
	PostJournalEntry(ctx context.Context, req dto.PostJournalEntryRequest) (string, error)
}
