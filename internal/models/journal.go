package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the stored journal entry header.
type JournalEntry struct {
	JournalEntryID     string     `db:"journal_entry_id" json:"journalEntryID"`
	PostingDate        time.Time  `db:"posting_date" json:"postingDate"`
	ReferenceNumber    string     `db:"reference_number" json:"referenceNumber"`
	SourceTag          string     `db:"source_tag" json:"sourceTag"`
	Description        string     `db:"description" json:"description"`
	PostingBatchID     *string    `db:"posting_batch_id" json:"postingBatchID,omitempty"`
	AccountingPeriodID *string    `db:"accounting_period_id" json:"accountingPeriodID,omitempty"`
	ReversalOfID       *string    `db:"reversal_of_id" json:"reversalOfID,omitempty"`
	Status             string     `db:"status" json:"status"`
	Version            int        `db:"version" json:"version"`
	PostedBy           *string    `db:"posted_by" json:"postedBy,omitempty"`
	PostedAt           *time.Time `db:"posted_at" json:"postedAt,omitempty"`
	AuditFields
}

// JournalEntryLine is a stored journal entry line.
type JournalEntryLine struct {
	LineID         string          `db:"line_id" json:"lineID"`
	JournalEntryID string          `db:"journal_entry_id" json:"journalEntryID"`
	LineNumber     int             `db:"line_number" json:"lineNumber"`
	AccountID      string          `db:"account_id" json:"accountID"`
	Debit          decimal.Decimal `db:"debit" json:"debit"`
	Credit         decimal.Decimal `db:"credit" json:"credit"`
	Memo           string          `db:"memo" json:"memo"`
}

// StoredJournalEntry is a header with its lines, the shape kept by the
// embedded store.
type StoredJournalEntry struct {
	JournalEntry
	Lines []JournalEntryLine `json:"lines"`
}
