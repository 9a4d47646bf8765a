package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RecurrenceFrequency controls how often a template falls due.
type RecurrenceFrequency string

const (
	Daily   RecurrenceFrequency = "DAILY"
	Weekly  RecurrenceFrequency = "WEEKLY"
	Monthly RecurrenceFrequency = "MONTHLY"
)

// ParseFrequency accepts any letter case and defaults to Monthly when blank.
func ParseFrequency(s string) (RecurrenceFrequency, error) {
	switch f := RecurrenceFrequency(strings.ToUpper(strings.TrimSpace(s))); f {
	case "":
		return Monthly, nil
	case Daily, Weekly, Monthly:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown frequency %q", apperrors.ErrValidation, s)
	}
}

// maxDueDates bounds a single catch-up run.
const maxDueDates = 366

// RecurringJournalTemplate describes a two-line entry generated on a schedule.
type RecurringJournalTemplate struct {
	TemplateID                  string              `json:"templateID"`
	TemplateCode                string              `json:"templateCode"`
	Description                 string              `json:"description"`
	DebitAccountID              string              `json:"debitAccountID"`
	CreditAccountID             string              `json:"creditAccountID"`
	Amount                      decimal.Decimal     `json:"amount"`
	PostingBatchID              *string             `json:"postingBatchID,omitempty"`
	SourceTag                   string              `json:"sourceTag"`
	Frequency                   RecurrenceFrequency `json:"frequency"`
	StartDate                   time.Time           `json:"startDate"`
	IsActive                    bool                `json:"isActive"`
	LastGeneratedFor            *time.Time          `json:"lastGeneratedFor,omitempty"`
	LastGeneratedJournalEntryID *string             `json:"lastGeneratedJournalEntryID,omitempty"`
	Version                     int                 `json:"version"`
	AuditFields
}

// Validate checks the configuration of the template.
func (t RecurringJournalTemplate) Validate() error {
	switch {
	case t.TemplateCode == "":
		return fmt.Errorf("%w: template code is required", apperrors.ErrValidation)
	case t.DebitAccountID == "" || t.CreditAccountID == "":
		return fmt.Errorf("%w: template %s needs both a debit and a credit account", apperrors.ErrValidation, t.TemplateCode)
	case !t.Amount.IsPositive():
		return fmt.Errorf("%w: template %s amount must be positive", apperrors.ErrValidation, t.TemplateCode)
	}
	if _, err := ParseFrequency(string(t.Frequency)); err != nil {
		return err
	}
	return nil
}

// GenerationReference is the reference number stamped on generated entries.
func (t RecurringJournalTemplate) GenerationReference(target time.Time) string {
	return fmt.Sprintf("REC-%s-%s", t.TemplateCode, CalendarDay(target).Format("20060102"))
}

// ScheduledDate is occurrence n of the schedule, counted from StartDate.
// Monthly occurrences keep the start day, clamped to short months.
func (t RecurringJournalTemplate) ScheduledDate(n int) time.Time {
	start := CalendarDay(t.StartDate)
	switch t.Frequency {
	case Daily:
		return start.AddDate(0, 0, n)
	case Weekly:
		return start.AddDate(0, 0, 7*n)
	default:
		return addMonthsAnchored(start, n)
	}
}

// addMonthsAnchored moves n months from start, keeping the start day where
// the month is long enough and clamping to its last day otherwise.
func addMonthsAnchored(start time.Time, n int) time.Time {
	y, m, d := start.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// DueDates lists the scheduled dates on or before asOf that are missing from
// generated, oldest first and at most maxDueDates of them. Generations for
// off-schedule dates neither cover nor shift a scheduled date.
func (t RecurringJournalTemplate) DueDates(asOf time.Time, generated []time.Time) []time.Time {
	if !t.IsActive {
		return nil
	}
	done := make(map[time.Time]struct{}, len(generated))
	for _, g := range generated {
		done[CalendarDay(g)] = struct{}{}
	}
	limit := CalendarDay(asOf)
	var out []time.Time
	for n := 0; len(out) < maxDueDates; n++ {
		next := t.ScheduledDate(n)
		if next.After(limit) {
			break
		}
		if _, ok := done[next]; !ok {
			out = append(out, next)
		}
	}
	return out
}

// RecordGeneration advances the last-generated marker. Backfills for
// earlier dates leave the marker where it is. The schedule never reads it.
func (t *RecurringJournalTemplate) RecordGeneration(target time.Time, journalEntryID, actor string, at time.Time) {
	day := CalendarDay(target)
	if t.LastGeneratedFor == nil || day.After(*t.LastGeneratedFor) {
		id := journalEntryID
		t.LastGeneratedFor = &day
		t.LastGeneratedJournalEntryID = &id
	}
	t.Version++
	t.LastUpdatedAt = at.UTC()
	t.LastUpdatedBy = actor
}

// Reconfigure copies the configurable fields of def onto t, keeping the
// generation markers.
func (t *RecurringJournalTemplate) Reconfigure(def RecurringJournalTemplate, actor string, at time.Time) {
	t.Description = def.Description
	t.DebitAccountID = def.DebitAccountID
	t.CreditAccountID = def.CreditAccountID
	t.Amount = def.Amount
	t.PostingBatchID = def.PostingBatchID
	t.SourceTag = def.SourceTag
	t.Frequency = def.Frequency
	t.StartDate = CalendarDay(def.StartDate)
	t.IsActive = def.IsActive
	t.Version++
	t.LastUpdatedAt = at.UTC()
	t.LastUpdatedBy = actor
}

// RecurringGeneration records that a template produced an entry for a date.
// (TemplateID, TargetDate) is unique.
type RecurringGeneration struct {
	TemplateID     string    `json:"templateID"`
	TargetDate     time.Time `json:"targetDate"`
	JournalEntryID string    `json:"journalEntryID"`
	GeneratedBy    string    `json:"generatedBy"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

// NewDraftFromTemplate builds the two-line draft for one target date.
func NewDraftFromTemplate(t RecurringJournalTemplate, target time.Time, actor string, at time.Time) (*JournalEntry, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	day := CalendarDay(target)
	description := t.Description
	if description == "" {
		description = fmt.Sprintf("Recurring entry %s", t.TemplateCode)
	}
	entry, err := NewJournalEntry(NewJournalEntryParams{
		PostingDate:     day,
		ReferenceNumber: t.GenerationReference(day),
		SourceTag:       t.SourceTag,
		Description:     description,
		PostingBatchID:  t.PostingBatchID,
		CreatedBy:       actor,
		CreatedAt:       at,
	})
	if err != nil {
		return nil, err
	}
	debit, err := NewJournalEntryLine(t.DebitAccountID, t.Amount, decimal.Zero, description)
	if err != nil {
		return nil, err
	}
	credit, err := NewJournalEntryLine(t.CreditAccountID, decimal.Zero, t.Amount, description)
	if err != nil {
		return nil, err
	}
	entry.appendLine(debit)
	entry.appendLine(credit)
	return entry, nil
}
