package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rentTemplate() domain.RecurringJournalTemplate {
	return domain.RecurringJournalTemplate{
		TemplateID:      "tpl-1",
		TemplateCode:    "RENT",
		Description:     "Office rent",
		DebitAccountID:  "6100",
		CreditAccountID: "1000",
		Amount:          decimal.NewFromInt(500),
		Frequency:       domain.Monthly,
		StartDate:       day(2024, 1, 31),
		IsActive:        true,
		Version:         1,
	}
}

func TestRecurringTemplate_GenerationReference(t *testing.T) {
	tpl := rentTemplate()
	assert.Equal(t, "REC-RENT-20240131", tpl.GenerationReference(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)))
}

func TestRecurringTemplate_ScheduledDate(t *testing.T) {
	tests := []struct {
		name      string
		frequency domain.RecurrenceFrequency
		n         int
		want      time.Time
	}{
		{name: "first occurrence", frequency: domain.Monthly, n: 0, want: day(2024, 1, 31)},
		{name: "daily", frequency: domain.Daily, n: 29, want: day(2024, 2, 29)},
		{name: "weekly", frequency: domain.Weekly, n: 5, want: day(2024, 3, 6)},
		{name: "monthly clamps to month end", frequency: domain.Monthly, n: 1, want: day(2024, 2, 29)},
		{name: "monthly returns to anchor", frequency: domain.Monthly, n: 2, want: day(2024, 3, 31)},
		{name: "monthly across the year", frequency: domain.Monthly, n: 13, want: day(2025, 2, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := rentTemplate()
			tpl.Frequency = tt.frequency
			assert.Equal(t, tt.want, tpl.ScheduledDate(tt.n))
		})
	}
}

func TestRecurringTemplate_DueDates(t *testing.T) {
	tpl := rentTemplate()
	asOf := day(2024, 4, 15)
	assert.Equal(t, []time.Time{day(2024, 1, 31), day(2024, 2, 29), day(2024, 3, 31)}, tpl.DueDates(asOf, nil))

	t.Run("skips generated dates", func(t *testing.T) {
		got := tpl.DueDates(asOf, []time.Time{day(2024, 2, 29)})
		assert.Equal(t, []time.Time{day(2024, 1, 31), day(2024, 3, 31)}, got)
	})

	t.Run("ignores the marker", func(t *testing.T) {
		marked := rentTemplate()
		marked.LastGeneratedFor = ptr(day(2024, 3, 31))
		assert.Equal(t, []time.Time{day(2024, 1, 31), day(2024, 2, 29)}, marked.DueDates(asOf, []time.Time{day(2024, 3, 31)}))
	})

	t.Run("off-schedule generations keep the anchor", func(t *testing.T) {
		got := tpl.DueDates(asOf, []time.Time{day(2023, 12, 15), day(2024, 2, 15)})
		assert.Equal(t, []time.Time{day(2024, 1, 31), day(2024, 2, 29), day(2024, 3, 31)}, got)
	})

	t.Run("before start", func(t *testing.T) {
		assert.Empty(t, tpl.DueDates(day(2024, 1, 30), nil))
	})

	t.Run("inactive", func(t *testing.T) {
		inactive := rentTemplate()
		inactive.IsActive = false
		assert.Empty(t, inactive.DueDates(asOf, nil))
	})
}

func TestRecurringTemplate_DueDatesCapped(t *testing.T) {
	tpl := rentTemplate()
	tpl.Frequency = domain.Daily
	got := tpl.DueDates(day(2026, 1, 1), nil)
	require.Len(t, got, 366)
	assert.Equal(t, day(2024, 1, 31), got[0])
}

func TestRecurringTemplate_RecordGeneration(t *testing.T) {
	tpl := rentTemplate()
	tpl.RecordGeneration(day(2024, 3, 31), "je-march", "scheduler", baseTime)
	require.NotNil(t, tpl.LastGeneratedFor)
	assert.Equal(t, day(2024, 3, 31), *tpl.LastGeneratedFor)
	assert.Equal(t, "je-march", *tpl.LastGeneratedJournalEntryID)
	assert.Equal(t, 2, tpl.Version)

	tpl.RecordGeneration(day(2024, 2, 29), "je-feb", "scheduler", baseTime)
	assert.Equal(t, day(2024, 3, 31), *tpl.LastGeneratedFor, "a backfill must not move the marker back")
	assert.Equal(t, "je-march", *tpl.LastGeneratedJournalEntryID)
	assert.Equal(t, 3, tpl.Version)
}

func TestRecurringTemplate_Validate(t *testing.T) {
	tpl := rentTemplate()
	assert.NoError(t, tpl.Validate())

	tpl.Amount = decimal.Zero
	assert.ErrorIs(t, tpl.Validate(), apperrors.ErrValidation)

	tpl = rentTemplate()
	tpl.CreditAccountID = ""
	assert.ErrorIs(t, tpl.Validate(), apperrors.ErrValidation)

	tpl = rentTemplate()
	tpl.Frequency = "HOURLY"
	assert.ErrorIs(t, tpl.Validate(), apperrors.ErrValidation)
}

func TestNewDraftFromTemplate(t *testing.T) {
	tpl := rentTemplate()
	entry, err := domain.NewDraftFromTemplate(tpl, time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC), "scheduler", baseTime)
	require.NoError(t, err)

	assert.Equal(t, "REC-RENT-20240501", entry.ReferenceNumber())
	assert.Equal(t, day(2024, 5, 1), entry.PostingDate())
	assert.False(t, entry.IsPosted())
	assert.Equal(t, "Office rent", entry.Description())

	lines := entry.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "6100", lines[0].AccountID)
	assert.True(t, lines[0].Debit.Equal(decimal.NewFromInt(500)))
	assert.True(t, lines[0].Credit.IsZero())
	assert.Equal(t, "1000", lines[1].AccountID)
	assert.True(t, lines[1].Credit.Equal(decimal.NewFromInt(500)))
	assert.True(t, lines[1].Debit.IsZero())
}

func TestParsePolicies(t *testing.T) {
	p, err := domain.ParseMissingAccountPolicy("STRICT")
	require.NoError(t, err)
	assert.Equal(t, domain.MissingAccountStrict, p)

	p, err = domain.ParseMissingAccountPolicy("")
	require.NoError(t, err)
	assert.Equal(t, domain.MissingAccountFallback, p)

	_, err = domain.ParseMissingAccountPolicy("ignore")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	d, err := domain.ParseDuplicateGenerationPolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, domain.DuplicateReject, d)

	_, err = domain.ParseDuplicateGenerationPolicy("overwrite")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	f, err := domain.ParseFrequency("weekly")
	require.NoError(t, err)
	assert.Equal(t, domain.Weekly, f)
}

func ptr[T any](v T) *T {
	return &v
}
