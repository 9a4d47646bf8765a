package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrLedgerEntryAlreadyPosted = fmt.Errorf("general ledger entry %w", apperrors.ErrAlreadyPosted)

// GeneralLedgerEntry is the immutable ledger row derived from one journal line.
type GeneralLedgerEntry struct {
	LedgerEntryID   string          `json:"ledgerEntryID"`
	JournalEntryID  string          `json:"journalEntryID"`
	JournalLineID   string          `json:"journalLineID"`
	AccountID       string          `json:"accountID"`
	AccountCode     string          `json:"accountCode"`
	Classification  AccountType     `json:"classification"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	TransactionDate time.Time       `json:"transactionDate"`
	ReferenceNumber string          `json:"referenceNumber"`
	Memo            string          `json:"memo"`
	PostedBy        string          `json:"postedBy"`
	PostedAt        *time.Time      `json:"postedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// LedgerEntryParams carries the journal line and the denormalized account data.
type LedgerEntryParams struct {
	JournalEntryID  string
	Line            JournalEntryLine
	AccountCode     string
	Classification  AccountType
	TransactionDate time.Time
	ReferenceNumber string
	CreatedAt       time.Time
}

// NewGeneralLedgerEntry builds an unposted ledger row. Amounts are copied verbatim.
func NewGeneralLedgerEntry(p LedgerEntryParams) GeneralLedgerEntry {
	return GeneralLedgerEntry{
		LedgerEntryID:   uuid.NewString(),
		JournalEntryID:  p.JournalEntryID,
		JournalLineID:   p.Line.LineID,
		AccountID:       p.Line.AccountID,
		AccountCode:     p.AccountCode,
		Classification:  p.Classification,
		Debit:           p.Line.Debit,
		Credit:          p.Line.Credit,
		TransactionDate: CalendarDay(p.TransactionDate),
		ReferenceNumber: p.ReferenceNumber,
		Memo:            p.Line.Memo,
		CreatedAt:       p.CreatedAt.UTC(),
	}
}

// MarkPosted stamps the posting actor and time exactly once.
func (g *GeneralLedgerEntry) MarkPosted(actor string, at time.Time) error {
	if g.PostedAt != nil {
		return fmt.Errorf("%w: %s", ErrLedgerEntryAlreadyPosted, g.LedgerEntryID)
	}
	postedAt := at.UTC()
	g.PostedBy = actor
	g.PostedAt = &postedAt
	return nil
}

func (g GeneralLedgerEntry) IsPosted() bool {
	return g.PostedAt != nil
}
