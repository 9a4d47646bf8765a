package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GeneralLedgerEntry is a stored, append-only ledger row.
type GeneralLedgerEntry struct {
	LedgerEntryID   string          `db:"ledger_entry_id" json:"ledgerEntryID"`
	JournalEntryID  string          `db:"journal_entry_id" json:"journalEntryID"`
	JournalLineID   string          `db:"journal_line_id" json:"journalLineID"`
	AccountID       string          `db:"account_id" json:"accountID"`
	AccountCode     string          `db:"account_code" json:"accountCode"`
	Classification  string          `db:"classification" json:"classification"`
	Debit           decimal.Decimal `db:"debit" json:"debit"`
	Credit          decimal.Decimal `db:"credit" json:"credit"`
	TransactionDate time.Time       `db:"transaction_date" json:"transactionDate"`
	ReferenceNumber string          `db:"reference_number" json:"referenceNumber"`
	Memo            string          `db:"memo" json:"memo"`
	PostedBy        *string         `db:"posted_by" json:"postedBy,omitempty"`
	PostedAt        *time.Time      `db:"posted_at" json:"postedAt,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}
