package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/core/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)

func fixedClock() portssvc.Clock {
	return portssvc.ClockFunc(func() time.Time { return fixedNow })
}

// decimalComparer compares amounts by value, so 100 equals 100.00.
var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// ledgerOpts ignores the generated ids and timestamps of ledger rows.
var ledgerOpts = cmp.Options{
	decimalComparer,
	cmpopts.IgnoreFields(domain.GeneralLedgerEntry{}, "LedgerEntryID", "JournalLineID", "JournalEntryID", "PostedAt", "CreatedAt"),
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fixture is a service container over a fresh in-memory store.
type fixture struct {
	store *memory.Store
	svc   *portssvc.ServiceContainer
}

func newFixture(t *testing.T, policy services.Policy) *fixture {
	t.Helper()
	store := memory.New()
	opts := []services.ServiceOption{services.WithClock(fixedClock()), services.WithPolicy(policy)}
	repos := store.Provider()
	return &fixture{
		store: store,
		svc: &portssvc.ServiceContainer{
			Posting:   services.NewPostingService(repos.UnitOfWork, repos.AccountRepo, opts...),
			Recurring: services.NewRecurringService(repos.UnitOfWork, repos.TemplateRepo, opts...),
			Journal:   services.NewJournalService(repos.UnitOfWork, repos.JournalRepo, repos.LedgerRepo, opts...),
			Catalog:   services.NewCatalogService(repos.UnitOfWork, repos.AccountRepo, opts...),
		},
	}
}

func (f *fixture) seedAccounts(t *testing.T) {
	t.Helper()
	for _, a := range []domain.Account{
		{AccountID: "acct-a", Code: "1000", Name: "Cash", AccountType: domain.Asset, IsActive: true},
		{AccountID: "acct-b", Code: "4000", Name: "Revenue", AccountType: domain.Revenue, IsActive: true},
	} {
		require.NoError(t, f.store.SaveAccount(context.Background(), a))
	}
}

func (f *fixture) draft(t *testing.T, ref string, lines ...dto.JournalLineRequest) *domain.JournalEntry {
	t.Helper()
	entry, err := f.svc.Journal.CreateDraftJournalEntry(context.Background(), dto.CreateDraftJournalEntryRequest{
		PostingDate:     fixedNow,
		ReferenceNumber: ref,
		Actor:           "clerk",
		Lines:           lines,
	})
	require.NoError(t, err)
	return entry
}

func debit(account, amt string) dto.JournalLineRequest {
	return dto.JournalLineRequest{AccountID: account, Debit: amount(amt)}
}

func credit(account, amt string) dto.JournalLineRequest {
	return dto.JournalLineRequest{AccountID: account, Credit: amount(amt)}
}
