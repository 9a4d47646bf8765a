package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func draftEntry(t *testing.T, ref string) *domain.JournalEntry {
	t.Helper()
	entry, err := domain.NewJournalEntry(domain.NewJournalEntryParams{
		PostingDate:     now,
		ReferenceNumber: ref,
		CreatedBy:       "tester",
		CreatedAt:       now,
	})
	require.NoError(t, err)
	debit, err := domain.NewJournalEntryLine("cash", decimal.NewFromInt(100), decimal.Zero, "")
	require.NoError(t, err)
	credit, err := domain.NewJournalEntryLine("revenue", decimal.Zero, decimal.NewFromInt(100), "")
	require.NoError(t, err)
	require.NoError(t, entry.AddLine(debit))
	require.NoError(t, entry.AddLine(credit))
	return entry
}

func insert(t *testing.T, store *memory.Store, entry *domain.JournalEntry) {
	t.Helper()
	require.NoError(t, store.Do(context.Background(), func(ctx context.Context, s portsrepo.Stores) error {
		return s.Journals.InsertJournalEntry(ctx, entry)
	}))
}

func TestStore_DoIsAtomic(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	entry := draftEntry(t, "JE-1")
	boom := errors.New("boom")

	err := store.Do(ctx, func(ctx context.Context, s portsrepo.Stores) error {
		require.NoError(t, s.Journals.InsertJournalEntry(ctx, entry))
		require.NoError(t, s.Outbox.StoreOutboxEntries(ctx, []domain.OutboxEntry{{ID: "evt-1", CreatedAt: now}}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.FindJournalEntryByID(ctx, entry.ID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	pending, err := store.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestStore_CanceledContextDiscardsWrites(t *testing.T) {
	store := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	entry := draftEntry(t, "JE-1")

	err := store.Do(ctx, func(ctx context.Context, s portsrepo.Stores) error {
		require.NoError(t, s.Journals.InsertJournalEntry(ctx, entry))
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = store.FindJournalEntryByID(context.Background(), entry.ID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_JournalRoundTripAndVersionChecks(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	entry := draftEntry(t, "JE-1")
	insert(t, store, entry)

	loaded, err := store.FindJournalEntryByID(ctx, entry.ID())
	require.NoError(t, err)
	assert.Equal(t, entry.Snapshot(), loaded.Snapshot())

	err = store.Do(ctx, func(ctx context.Context, s portsrepo.Stores) error {
		return s.Journals.InsertJournalEntry(ctx, entry)
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	stale := loaded.Version() - 1
	require.NoError(t, loaded.MarkPosted("poster", now))
	err = store.Do(ctx, func(ctx context.Context, s portsrepo.Stores) error {
		return s.Journals.MarkJournalEntryPosted(ctx, loaded, stale)
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	err = store.Do(ctx, func(ctx context.Context, s portsrepo.Stores) error {
		return s.Journals.MarkJournalEntryPosted(ctx, loaded, entry.Version())
	})
	require.NoError(t, err)

	posted, err := store.FindJournalEntryByID(ctx, entry.ID())
	require.NoError(t, err)
	assert.True(t, posted.IsPosted())

	// a posted entry can no longer be rewritten
	err = store.Do(ctx, func(ctx context.Context, s portsrepo.Stores) error {
		return s.Journals.UpdateDraftJournalEntry(ctx, posted, posted.Version())
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestStore_LedgerRejectsSecondRowForLine(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	entry := draftEntry(t, "JE-1")
	insert(t, store, entry)

	rows := make([]domain.GeneralLedgerEntry, 0, 2)
	for _, line := range entry.Lines() {
		rows = append(rows, domain.NewGeneralLedgerEntry(domain.LedgerEntryParams{
			JournalEntryID:  entry.ID(),
			Line:            line,
			AccountCode:     line.AccountID,
			Classification:  domain.Unclassified,
			TransactionDate: now,
			ReferenceNumber: "JE-1",
			CreatedAt:       now,
		}))
	}
	appendRows := func() error {
		return store.Do(ctx, func(ctx context.Context, s portsrepo.Stores) error {
			return s.Ledger.AppendLedgerEntries(ctx, rows)
		})
	}
	require.NoError(t, appendRows())
	assert.ErrorIs(t, appendRows(), apperrors.ErrDuplicate)

	listed, err := store.ListLedgerEntriesByJournalEntryID(ctx, entry.ID())
	require.NoError(t, err)
	assert.Equal(t, rows, listed)
}

func TestStore_TemplatesAndGenerations(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	tpl := domain.RecurringJournalTemplate{
		TemplateID:      "tpl-1",
		TemplateCode:    "RENT",
		DebitAccountID:  "rent-expense",
		CreditAccountID: "cash",
		Amount:          decimal.NewFromInt(1500),
		Frequency:       domain.Monthly,
		StartDate:       now,
		IsActive:        true,
		Version:         1,
	}
	save := func(t domain.RecurringJournalTemplate, expected int) error {
		return store.Do(ctx, func(ctx context.Context, s portsrepo.Stores) error {
			return s.Templates.SaveTemplate(ctx, t, expected)
		})
	}
	require.NoError(t, save(tpl, 0))
	assert.ErrorIs(t, save(tpl, 0), apperrors.ErrDuplicate)

	other := tpl
	other.TemplateID = "tpl-2"
	assert.ErrorIs(t, save(other, 0), apperrors.ErrDuplicate, "codes are unique")

	byCode, err := store.FindTemplateByCode(ctx, "RENT")
	require.NoError(t, err)
	assert.Equal(t, "tpl-1", byCode.TemplateID)

	updated := *byCode
	updated.Version++
	assert.ErrorIs(t, save(updated, 7), apperrors.ErrConflict)
	require.NoError(t, save(updated, 1))

	gen := domain.RecurringGeneration{TemplateID: "tpl-1", TargetDate: now, JournalEntryID: "je-1", GeneratedBy: "tester", GeneratedAt: now}
	insertGen := func() error {
		return store.Do(ctx, func(ctx context.Context, s portsrepo.Stores) error {
			return s.Templates.InsertGeneration(ctx, gen)
		})
	}
	require.NoError(t, insertGen())
	assert.ErrorIs(t, insertGen(), apperrors.ErrDuplicate)

	found, err := store.FindGeneration(ctx, "tpl-1", now.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "je-1", found.JournalEntryID)
	assert.Equal(t, domain.CalendarDay(now), found.TargetDate)

	_, err = store.FindGeneration(ctx, "tpl-1", now.AddDate(0, 1, 0))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	active, err := store.ListActiveTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 2, active[0].Version)
}

func TestStore_OutboxAndAccounts(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	require.NoError(t, store.StoreOutboxEntries(ctx, []domain.OutboxEntry{
		{ID: "a", CreatedAt: now},
		{ID: "b", CreatedAt: now.Add(time.Second)},
		{ID: "c", CreatedAt: now.Add(2 * time.Second)},
	}))
	batch, err := store.FetchUnpublished(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "a", batch[0].ID)

	require.NoError(t, store.MarkPublished(ctx, []string{"a", "b"}, now))
	batch, err = store.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "c", batch[0].ID)

	account := domain.Account{AccountID: "cash", Code: "1000", AccountType: domain.Asset, IsActive: true,
		AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: "loader"}}
	require.NoError(t, store.SaveAccount(ctx, account))
	account.Name = "Cash"
	account.CreatedBy = "someone-else"
	require.NoError(t, store.SaveAccount(ctx, account))

	found, err := store.FindAccountByID(ctx, "cash")
	require.NoError(t, err)
	assert.Equal(t, "Cash", found.Name)
	assert.Equal(t, "loader", found.CreatedBy)

	_, err = store.FindAccountByID(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_ListGenerationDates(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, store.Do(ctx, func(ctx context.Context, s portsrepo.Stores) error {
		for _, g := range []domain.RecurringGeneration{
			{TemplateID: "tpl-1", TargetDate: day(3, 31), JournalEntryID: "je-3"},
			{TemplateID: "tpl-1", TargetDate: day(1, 31), JournalEntryID: "je-1"},
			{TemplateID: "tpl-1", TargetDate: day(6, 30), JournalEntryID: "je-6"},
			{TemplateID: "tpl-10", TargetDate: day(2, 29), JournalEntryID: "je-x"},
		} {
			if err := s.Templates.InsertGeneration(ctx, g); err != nil {
				return err
			}
		}
		return nil
	}))

	dates, err := store.ListGenerationDates(ctx, "tpl-1", day(6, 29).Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(1, 31), day(3, 31)}, dates)

	dates, err = store.ListGenerationDates(ctx, "tpl-1", day(6, 30))
	require.NoError(t, err)
	assert.Len(t, dates, 3)

	dates, err = store.ListGenerationDates(ctx, "tpl-2", day(12, 31))
	require.NoError(t, err)
	assert.Empty(t, dates)
}
