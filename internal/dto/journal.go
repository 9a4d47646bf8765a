package dto

import (
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one line of a draft journal entry.
type JournalLineRequest struct {
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo,omitempty"`
}

// CreateDraftJournalEntryRequest creates a draft journal entry with its lines.
type CreateDraftJournalEntryRequest struct {
	PostingDate        time.Time
	ReferenceNumber    string
	SourceTag          string
	Description        string
	PostingBatchID     *string
	AccountingPeriodID *string
	Lines              []JournalLineRequest
	Actor              string
}

// AppendLinesRequest adds lines to an existing draft.
type AppendLinesRequest struct {
	JournalEntryID string
	Lines          []JournalLineRequest
	Actor          string
}

// CreateReversalRequest drafts the mirror image of a posted entry.
type CreateReversalRequest struct {
	JournalEntryID string
	// PostingDate defaults to the current UTC day.
	PostingDate *time.Time
	Actor       string
}

// JournalLineResponse defines the data returned for a journal entry line.
type JournalLineResponse struct {
	LineID     string          `json:"lineID"`
	LineNumber int             `json:"lineNumber"`
	AccountID  string          `json:"accountID"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Memo       string          `json:"memo,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	JournalEntryID  string                `json:"journalEntryID"`
	ReferenceNumber string                `json:"referenceNumber"`
	PostingDate     time.Time             `json:"postingDate"`
	Description     string                `json:"description,omitempty"`
	SourceTag       string                `json:"sourceTag,omitempty"`
	Status          string                `json:"status"`
	Version         int                   `json:"version"`
	ReversalOfID    *string               `json:"reversalOfID,omitempty"`
	PostedBy        string                `json:"postedBy,omitempty"`
	PostedAt        *time.Time            `json:"postedAt,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	Lines           []JournalLineResponse `json:"lines"`
}

// LedgerEntryResponse defines the data returned for a general ledger row.
type LedgerEntryResponse struct {
	LedgerEntryID   string          `json:"ledgerEntryID"`
	JournalLineID   string          `json:"journalLineID"`
	AccountID       string          `json:"accountID"`
	AccountCode     string          `json:"accountCode"`
	Classification  string          `json:"classification"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	TransactionDate time.Time       `json:"transactionDate"`
	ReferenceNumber string          `json:"referenceNumber"`
	PostedBy        string          `json:"postedBy"`
	PostedAt        *time.Time      `json:"postedAt,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	audit := e.Audit()
	lines := e.Lines()
	resp := JournalEntryResponse{
		JournalEntryID:  e.ID(),
		ReferenceNumber: e.ReferenceNumber(),
		PostingDate:     e.PostingDate(),
		Description:     e.Description(),
		SourceTag:       e.SourceTag(),
		Status:          string(e.Status()),
		Version:         e.Version(),
		ReversalOfID:    e.ReversalOfID(),
		PostedBy:        e.PostedBy(),
		PostedAt:        e.PostedAt(),
		CreatedAt:       audit.CreatedAt,
		CreatedBy:       audit.CreatedBy,
		Lines:           make([]JournalLineResponse, len(lines)),
	}
	for i, l := range lines {
		resp.Lines[i] = JournalLineResponse{
			LineID:     l.LineID,
			LineNumber: l.LineNumber,
			AccountID:  l.AccountID,
			Debit:      l.Debit,
			Credit:     l.Credit,
			Memo:       l.Memo,
		}
	}
	return resp
}

// ToLedgerEntryResponses converts general ledger rows to their DTOs.
func ToLedgerEntryResponses(rows []domain.GeneralLedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(rows))
	for i, r := range rows {
		out[i] = LedgerEntryResponse{
			LedgerEntryID:   r.LedgerEntryID,
			JournalLineID:   r.JournalLineID,
			AccountID:       r.AccountID,
			AccountCode:     r.AccountCode,
			Classification:  string(r.Classification),
			Debit:           r.Debit,
			Credit:          r.Credit,
			TransactionDate: r.TransactionDate,
			ReferenceNumber: r.ReferenceNumber,
			PostedBy:        r.PostedBy,
			PostedAt:        r.PostedAt,
		}
	}
	return out
}
