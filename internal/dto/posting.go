package dto

import "time"

// PostJournalEntryRequest asks the posting engine to post one draft.
type PostJournalEntryRequest struct {
	JournalEntryID string
	PostingDate    time.Time
	// PostingReference overrides the entry reference on the ledger rows.
	PostingReference *string
	// ValidateBalances overrides the configured default when set.
	ValidateBalances *bool
	// Actor defaults to the configured default actor.
	Actor string
}
