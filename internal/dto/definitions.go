package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Amounts in definition files are strings so YAML never turns them into floats.

// AccountDefinition is one chart-of-accounts row in a definitions file.
type AccountDefinition struct {
	ID     string `yaml:"id"`
	Code   string `yaml:"code"`
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Active *bool  `yaml:"active,omitempty"`
}

// RecurringTemplateDefinition is one recurring template in a definitions file.
type RecurringTemplateDefinition struct {
	ID              string  `yaml:"id,omitempty"`
	Code            string  `yaml:"code"`
	Description     string  `yaml:"description"`
	DebitAccountID  string  `yaml:"debitAccount"`
	CreditAccountID string  `yaml:"creditAccount"`
	Amount          string  `yaml:"amount"`
	PostingBatchID  *string `yaml:"postingBatch,omitempty"`
	SourceTag       string  `yaml:"sourceTag,omitempty"`
	Frequency       string  `yaml:"frequency,omitempty"`
	StartDate       string  `yaml:"startDate"`
	Active          *bool   `yaml:"active,omitempty"`
}

// LedgerDefinitions is the layout of the file read by `templates sync`.
type LedgerDefinitions struct {
	Accounts  []AccountDefinition           `yaml:"accounts"`
	Templates []RecurringTemplateDefinition `yaml:"templates"`
}

// DraftLineDefinition is one line of a draft journal entry file.
type DraftLineDefinition struct {
	AccountID string `yaml:"account"`
	Debit     string `yaml:"debit,omitempty"`
	Credit    string `yaml:"credit,omitempty"`
	Memo      string `yaml:"memo,omitempty"`
}

// DraftJournalEntryDefinition is the layout of the file read by `journal create`.
type DraftJournalEntryDefinition struct {
	PostingDate        string                `yaml:"postingDate"`
	ReferenceNumber    string                `yaml:"reference"`
	SourceTag          string                `yaml:"sourceTag,omitempty"`
	Description        string                `yaml:"description,omitempty"`
	PostingBatchID     *string               `yaml:"postingBatch,omitempty"`
	AccountingPeriodID *string               `yaml:"accountingPeriod,omitempty"`
	Lines              []DraftLineDefinition `yaml:"lines"`
}

// DraftLinesDefinition is the layout of the file read by `journal append`.
type DraftLinesDefinition struct {
	Lines []DraftLineDefinition `yaml:"lines"`
}

// SyncResult counts what a definitions sync changed.
type SyncResult struct {
	AccountsSaved    int `json:"accountsSaved"`
	TemplatesCreated int `json:"templatesCreated"`
	TemplatesUpdated int `json:"templatesUpdated"`
}

// ToRequest parses the string fields of a draft file.
func (d DraftJournalEntryDefinition) ToRequest(actor string) (CreateDraftJournalEntryRequest, error) {
	postingDate, err := ParseDate(d.PostingDate)
	if err != nil {
		return CreateDraftJournalEntryRequest{}, err
	}
	req := CreateDraftJournalEntryRequest{
		PostingDate:        postingDate,
		ReferenceNumber:    d.ReferenceNumber,
		SourceTag:          d.SourceTag,
		Description:        d.Description,
		PostingBatchID:     d.PostingBatchID,
		AccountingPeriodID: d.AccountingPeriodID,
		Actor:              actor,
	}
	if req.Lines, err = ParseDraftLines(d.Lines); err != nil {
		return CreateDraftJournalEntryRequest{}, err
	}
	return req, nil
}

// ParseDraftLines parses the amounts of line definitions.
func ParseDraftLines(defs []DraftLineDefinition) ([]JournalLineRequest, error) {
	lines := make([]JournalLineRequest, 0, len(defs))
	for i, l := range defs {
		debit, err := ParseAmount(l.Debit)
		if err != nil {
			return nil, fmt.Errorf("line %d debit: %w", i+1, err)
		}
		credit, err := ParseAmount(l.Credit)
		if err != nil {
			return nil, fmt.Errorf("line %d credit: %w", i+1, err)
		}
		lines = append(lines, JournalLineRequest{
			AccountID: l.AccountID,
			Debit:     debit,
			Credit:    credit,
			Memo:      l.Memo,
		})
	}
	return lines, nil
}

// DateLayout is the calendar date format used on the command line and in files.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date as a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", apperrors.ErrValidation, s)
	}
	return t, nil
}

// ParseAmount parses a decimal string. Blank means zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", apperrors.ErrValidation, s)
	}
	return d, nil
}
