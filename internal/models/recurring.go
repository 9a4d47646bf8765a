package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringJournalTemplate is the stored template row.
type RecurringJournalTemplate struct {
	TemplateID                  string          `db:"template_id" json:"templateID"`
	TemplateCode                string          `db:"template_code" json:"templateCode"`
	Description                 string          `db:"description" json:"description"`
	DebitAccountID              string          `db:"debit_account_id" json:"debitAccountID"`
	CreditAccountID             string          `db:"credit_account_id" json:"creditAccountID"`
	Amount                      decimal.Decimal `db:"amount" json:"amount"`
	PostingBatchID              *string         `db:"posting_batch_id" json:"postingBatchID,omitempty"`
	SourceTag                   string          `db:"source_tag" json:"sourceTag"`
	Frequency                   string          `db:"frequency" json:"frequency"`
	StartDate                   time.Time       `db:"start_date" json:"startDate"`
	IsActive                    bool            `db:"is_active" json:"isActive"`
	LastGeneratedFor            *time.Time      `db:"last_generated_for" json:"lastGeneratedFor,omitempty"`
	LastGeneratedJournalEntryID *string         `db:"last_generated_journal_entry_id" json:"lastGeneratedJournalEntryID,omitempty"`
	Version                     int             `db:"version" json:"version"`
	AuditFields
}

// RecurringGeneration marks a template as generated for a target date.
type RecurringGeneration struct {
	TemplateID     string    `db:"template_id" json:"templateID"`
	TargetDate     time.Time `db:"target_date" json:"targetDate"`
	JournalEntryID string    `db:"journal_entry_id" json:"journalEntryID"`
	GeneratedBy    string    `db:"generated_by" json:"generatedBy"`
	GeneratedAt    time.Time `db:"generated_at" json:"generatedAt"`
}
