package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalEntryStatus indicates the state of a journal entry.
type JournalEntryStatus string

const (
	Draft  JournalEntryStatus = "DRAFT"
	Posted JournalEntryStatus = "POSTED"
)

var (
	ErrJournalEntryLocked        = fmt.Errorf("%w: journal entry is posted and can no longer be changed", apperrors.ErrValidation)
	ErrJournalEntryAlreadyPosted = fmt.Errorf("journal entry %w", apperrors.ErrAlreadyPosted)
	ErrJournalEntryNotPosted     = fmt.Errorf("%w: journal entry has not been posted", apperrors.ErrValidation)
	ErrJournalLineNotFound       = fmt.Errorf("journal entry line %w", apperrors.ErrNotFound)
	ErrNegativeAmount            = fmt.Errorf("%w: debit and credit amounts must not be negative", apperrors.ErrValidation)
	ErrLineSidesNotExclusive     = fmt.Errorf("%w: exactly one of debit or credit must be non-zero", apperrors.ErrValidation)
)

// JournalEntryLine is a single debit or credit against one account.
type JournalEntryLine struct {
	LineID         string          `json:"lineID"`
	JournalEntryID string          `json:"journalEntryID"`
	LineNumber     int             `json:"lineNumber"`
	AccountID      string          `json:"accountID"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Memo           string          `json:"memo"`
}

// NewJournalEntryLine validates amounts and assigns a fresh line id.
func NewJournalEntryLine(accountID string, debit, credit decimal.Decimal, memo string) (JournalEntryLine, error) {
	if accountID == "" {
		return JournalEntryLine{}, fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}
	if debit.IsNegative() || credit.IsNegative() {
		return JournalEntryLine{}, ErrNegativeAmount
	}
	return JournalEntryLine{
		LineID:    uuid.NewString(),
		AccountID: accountID,
		Debit:     debit,
		Credit:    credit,
		Memo:      memo,
	}, nil
}

// ValidateExclusive reports an error unless exactly one side is non-zero.
func (l JournalEntryLine) ValidateExclusive() error {
	if l.Debit.IsZero() == l.Credit.IsZero() {
		return fmt.Errorf("%w (line %d, account %s)", ErrLineSidesNotExclusive, l.LineNumber, l.AccountID)
	}
	return nil
}

// Swapped returns a copy with debit and credit exchanged and a new id.
func (l JournalEntryLine) Swapped() JournalEntryLine {
	out := l
	out.LineID = uuid.NewString()
	out.JournalEntryID = ""
	out.LineNumber = 0
	out.Debit, out.Credit = l.Credit, l.Debit
	return out
}

// NewJournalEntryParams describes a new draft journal entry.
type NewJournalEntryParams struct {
	PostingDate        time.Time
	ReferenceNumber    string
	SourceTag          string
	Description        string
	PostingBatchID     *string
	AccountingPeriodID *string
	CreatedBy          string
	CreatedAt          time.Time
}

// JournalEntry is the draft or posted journal entry aggregate. Once posted
// every mutator returns ErrJournalEntryLocked.
type JournalEntry struct {
	id                 string
	postingDate        time.Time
	referenceNumber    string
	sourceTag          string
	description        string
	postingBatchID     *string
	accountingPeriodID *string
	reversalOfID       *string
	status             JournalEntryStatus
	lines              []JournalEntryLine
	version            int
	postedBy           string
	postedAt           *time.Time
	audit              AuditFields
}

// NewJournalEntry creates a draft journal entry with no lines.
func NewJournalEntry(p NewJournalEntryParams) (*JournalEntry, error) {
	if p.PostingDate.IsZero() {
		return nil, fmt.Errorf("%w: posting date is required", apperrors.ErrValidation)
	}
	if p.ReferenceNumber == "" {
		return nil, fmt.Errorf("%w: reference number is required", apperrors.ErrValidation)
	}
	createdAt := p.CreatedAt.UTC()
	return &JournalEntry{
		id:                 uuid.NewString(),
		postingDate:        CalendarDay(p.PostingDate),
		referenceNumber:    p.ReferenceNumber,
		sourceTag:          p.SourceTag,
		description:        p.Description,
		postingBatchID:     p.PostingBatchID,
		accountingPeriodID: p.AccountingPeriodID,
		status:             Draft,
		version:            1,
		audit: AuditFields{
			CreatedAt:     createdAt,
			CreatedBy:     p.CreatedBy,
			LastUpdatedAt: createdAt,
			LastUpdatedBy: p.CreatedBy,
		},
	}, nil
}

// NewReversal drafts an entry that undoes original by swapping every line.
func NewReversal(original *JournalEntry, postingDate time.Time, createdBy string, at time.Time) (*JournalEntry, error) {
	if !original.IsPosted() {
		return nil, fmt.Errorf("%w: %s", ErrJournalEntryNotPosted, original.id)
	}
	reversal, err := NewJournalEntry(NewJournalEntryParams{
		PostingDate:        postingDate,
		ReferenceNumber:    "REV-" + original.referenceNumber,
		SourceTag:          original.sourceTag,
		Description:        fmt.Sprintf("Reversal of %s", original.referenceNumber),
		PostingBatchID:     original.postingBatchID,
		AccountingPeriodID: original.accountingPeriodID,
		CreatedBy:          createdBy,
		CreatedAt:          at,
	})
	if err != nil {
		return nil, err
	}
	originalID := original.id
	reversal.reversalOfID = &originalID
	for _, line := range original.lines {
		reversal.appendLine(line.Swapped())
	}
	return reversal, nil
}

func (e *JournalEntry) ensureDraft() error {
	if e.status == Posted {
		return fmt.Errorf("%w: %s", ErrJournalEntryLocked, e.id)
	}
	return nil
}

func (e *JournalEntry) appendLine(line JournalEntryLine) {
	line.JournalEntryID = e.id
	line.LineNumber = len(e.lines) + 1
	e.lines = append(e.lines, line)
}

func (e *JournalEntry) renumber() {
	for i := range e.lines {
		e.lines[i].LineNumber = i + 1
	}
}

func (e *JournalEntry) changed() {
	e.version++
}

// AddLine appends line to a draft entry.
func (e *JournalEntry) AddLine(line JournalEntryLine) error {
	if err := e.ensureDraft(); err != nil {
		return err
	}
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return ErrNegativeAmount
	}
	if line.LineID == "" {
		line.LineID = uuid.NewString()
	}
	e.appendLine(line)
	e.changed()
	return nil
}

// ReplaceLine swaps the account, amounts and memo of an existing line.
func (e *JournalEntry) ReplaceLine(lineID string, line JournalEntryLine) error {
	if err := e.ensureDraft(); err != nil {
		return err
	}
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return ErrNegativeAmount
	}
	for i := range e.lines {
		if e.lines[i].LineID != lineID {
			continue
		}
		line.LineID = lineID
		line.JournalEntryID = e.id
		line.LineNumber = e.lines[i].LineNumber
		e.lines[i] = line
		e.changed()
		return nil
	}
	return fmt.Errorf("%w: %s", ErrJournalLineNotFound, lineID)
}

// RemoveLine deletes a line and renumbers the rest.
func (e *JournalEntry) RemoveLine(lineID string) error {
	if err := e.ensureDraft(); err != nil {
		return err
	}
	for i := range e.lines {
		if e.lines[i].LineID == lineID {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			e.renumber()
			e.changed()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrJournalLineNotFound, lineID)
}

func (e *JournalEntry) SetPostingDate(d time.Time) error {
	if err := e.ensureDraft(); err != nil {
		return err
	}
	if d.IsZero() {
		return fmt.Errorf("%w: posting date is required", apperrors.ErrValidation)
	}
	e.postingDate = CalendarDay(d)
	e.changed()
	return nil
}

func (e *JournalEntry) SetReference(ref string) error {
	if err := e.ensureDraft(); err != nil {
		return err
	}
	if ref == "" {
		return fmt.Errorf("%w: reference number is required", apperrors.ErrValidation)
	}
	e.referenceNumber = ref
	e.changed()
	return nil
}

func (e *JournalEntry) SetDescription(desc string) error {
	if err := e.ensureDraft(); err != nil {
		return err
	}
	e.description = desc
	e.changed()
	return nil
}

// Touch records who last changed the draft.
func (e *JournalEntry) Touch(actor string, at time.Time) {
	e.audit.LastUpdatedAt = at.UTC()
	e.audit.LastUpdatedBy = actor
}

// MarkPosted is the one-way DRAFT to POSTED transition.
func (e *JournalEntry) MarkPosted(actor string, at time.Time) error {
	if e.status == Posted {
		return fmt.Errorf("%w: %s", ErrJournalEntryAlreadyPosted, e.id)
	}
	postedAt := at.UTC()
	e.status = Posted
	e.postedBy = actor
	e.postedAt = &postedAt
	e.Touch(actor, postedAt)
	e.changed()
	return nil
}

func (e *JournalEntry) ID() string                  { return e.id }
func (e *JournalEntry) PostingDate() time.Time      { return e.postingDate }
func (e *JournalEntry) ReferenceNumber() string     { return e.referenceNumber }
func (e *JournalEntry) SourceTag() string           { return e.sourceTag }
func (e *JournalEntry) Description() string         { return e.description }
func (e *JournalEntry) PostingBatchID() *string     { return e.postingBatchID }
func (e *JournalEntry) AccountingPeriodID() *string { return e.accountingPeriodID }
func (e *JournalEntry) ReversalOfID() *string       { return e.reversalOfID }
func (e *JournalEntry) Status() JournalEntryStatus  { return e.status }
func (e *JournalEntry) IsPosted() bool              { return e.status == Posted }
func (e *JournalEntry) Version() int                { return e.version }
func (e *JournalEntry) PostedBy() string            { return e.postedBy }
func (e *JournalEntry) PostedAt() *time.Time        { return e.postedAt }
func (e *JournalEntry) Audit() AuditFields          { return e.audit }
func (e *JournalEntry) LineCount() int              { return len(e.lines) }

// Lines returns a copy of the lines ordered by line number.
func (e *JournalEntry) Lines() []JournalEntryLine {
	out := make([]JournalEntryLine, len(e.lines))
	copy(out, e.lines)
	return out
}

// JournalEntrySnapshot is the flat persistence form of a JournalEntry.
type JournalEntrySnapshot struct {
	JournalEntryID     string             `json:"journalEntryID"`
	PostingDate        time.Time          `json:"postingDate"`
	ReferenceNumber    string             `json:"referenceNumber"`
	SourceTag          string             `json:"sourceTag"`
	Description        string             `json:"description"`
	PostingBatchID     *string            `json:"postingBatchID,omitempty"`
	AccountingPeriodID *string            `json:"accountingPeriodID,omitempty"`
	ReversalOfID       *string            `json:"reversalOfID,omitempty"`
	Status             JournalEntryStatus `json:"status"`
	Version            int                `json:"version"`
	PostedBy           string             `json:"postedBy,omitempty"`
	PostedAt           *time.Time         `json:"postedAt,omitempty"`
	Lines              []JournalEntryLine `json:"lines"`
	AuditFields
}

// Snapshot copies the aggregate state for storage.
func (e *JournalEntry) Snapshot() JournalEntrySnapshot {
	return JournalEntrySnapshot{
		JournalEntryID:     e.id,
		PostingDate:        e.postingDate,
		ReferenceNumber:    e.referenceNumber,
		SourceTag:          e.sourceTag,
		Description:        e.description,
		PostingBatchID:     e.postingBatchID,
		AccountingPeriodID: e.accountingPeriodID,
		ReversalOfID:       e.reversalOfID,
		Status:             e.status,
		Version:            e.version,
		PostedBy:           e.postedBy,
		PostedAt:           e.postedAt,
		Lines:              e.Lines(),
		AuditFields:        e.audit,
	}
}

// RestoreJournalEntry rebuilds an aggregate from storage without validation.
func RestoreJournalEntry(s JournalEntrySnapshot) *JournalEntry {
	lines := make([]JournalEntryLine, len(s.Lines))
	copy(lines, s.Lines)
	return &JournalEntry{
		id:                 s.JournalEntryID,
		postingDate:        s.PostingDate,
		referenceNumber:    s.ReferenceNumber,
		sourceTag:          s.SourceTag,
		description:        s.Description,
		postingBatchID:     s.PostingBatchID,
		accountingPeriodID: s.AccountingPeriodID,
		reversalOfID:       s.ReversalOfID,
		status:             s.Status,
		lines:              lines,
		version:            s.Version,
		postedBy:           s.PostedBy,
		postedAt:           s.PostedAt,
		audit:              s.AuditFields,
	}
}
