//go:build integration

package pgsql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_ledger/internal/core/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/SscSPs/erp_ledger/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PostgresSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
	repos     portsrepo.RepositoryProvider
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ledger"),
		postgres.WithUsername("ledger"),
		postgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(dsn, "file://../../../../migrations"))

	s.pool, err = database.NewPgxPool(ctx, dsn, database.PoolOptions{MaxConns: 8, Ping: true})
	s.Require().NoError(err)
	s.repos = pgsql.NewRepositoryProvider(s.pool)
}

func (s *PostgresSuite) TearDownSuite() {
	database.ClosePgxPool(s.pool)
	if s.container != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.container.Terminate(ctx)
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `
		ALTER TABLE general_ledger_entries DISABLE TRIGGER general_ledger_entries_append_only;
		TRUNCATE outbox, recurring_generations, recurring_journal_templates, general_ledger_entries,
		         journal_entry_lines, journal_entries, accounts;
		ALTER TABLE general_ledger_entries ENABLE TRIGGER general_ledger_entries_append_only;
	`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) createDraft(ctx context.Context, debit, credit string) string {
	journals := services.NewJournalService(s.repos.UnitOfWork, s.repos.JournalRepo, s.repos.LedgerRepo)
	entry, err := journals.CreateDraftJournalEntry(ctx, dto.CreateDraftJournalEntryRequest{
		PostingDate:     time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		ReferenceNumber: "JE-1001",
		Actor:           "clerk",
		Lines: []dto.JournalLineRequest{
			{AccountID: "1000", Debit: decimal.RequireFromString(debit)},
			{AccountID: "4000", Credit: decimal.RequireFromString(credit)},
		},
	})
	s.Require().NoError(err)
	return entry.ID()
}

func (s *PostgresSuite) TestPostJournalEntry() {
	ctx := context.Background()
	s.Require().NoError(s.repos.AccountRepo.SaveAccount(ctx, domain.Account{
		AccountID: "1000", Code: "CASH", Name: "Cash", AccountType: domain.Asset, IsActive: true,
		AuditFields: domain.AuditFields{CreatedAt: time.Now(), CreatedBy: "loader", LastUpdatedAt: time.Now(), LastUpdatedBy: "loader"},
	}))
	id := s.createDraft(ctx, "250.125", "250.125")

	posting := services.NewPostingService(s.repos.UnitOfWork, s.repos.AccountRepo)
	req := dto.PostJournalEntryRequest{JournalEntryID: id, PostingDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), Actor: "poster"}
	got, err := posting.PostJournalEntry(ctx, req)
	s.Require().NoError(err)
	s.Equal(id, got)

	rows, err := s.repos.LedgerRepo.ListLedgerEntriesByJournalEntryID(ctx, id)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("CASH", rows[0].AccountCode)
	s.Equal(domain.Asset, rows[0].Classification)
	s.True(rows[0].Debit.Equal(decimal.RequireFromString("250.125")))
	s.Equal("4000", rows[1].AccountCode)
	s.Equal(domain.Unclassified, rows[1].Classification)

	_, err = posting.PostJournalEntry(ctx, req)
	s.ErrorIs(err, apperrors.ErrAlreadyPosted)

	// ledger rows are append-only at the database level
	_, err = s.pool.Exec(ctx, `UPDATE general_ledger_entries SET memo = 'x' WHERE journal_entry_id = $1`, id)
	s.Error(err)

	pending, err := s.repos.OutboxRepo.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(domain.EventJournalEntryPosted, pending[0].EventType)
	s.Require().NoError(s.repos.OutboxRepo.MarkPublished(ctx, []string{pending[0].ID}, time.Now()))
	pending, err = s.repos.OutboxRepo.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *PostgresSuite) TestUnbalancedEntryLeavesNoTrace() {
	ctx := context.Background()
	id := s.createDraft(ctx, "100", "90")

	posting := services.NewPostingService(s.repos.UnitOfWork, s.repos.AccountRepo)
	_, err := posting.PostJournalEntry(ctx, dto.PostJournalEntryRequest{JournalEntryID: id, PostingDate: time.Now()})
	s.ErrorIs(err, apperrors.ErrUnbalanced)

	entry, err := s.repos.JournalRepo.FindJournalEntryByID(ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.Draft, entry.Status())
	rows, err := s.repos.LedgerRepo.ListLedgerEntriesByJournalEntryID(ctx, id)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *PostgresSuite) TestConcurrentPostingPostsOnce() {
	ctx := context.Background()
	id := s.createDraft(ctx, "10", "10")
	posting := services.NewPostingService(s.repos.UnitOfWork, s.repos.AccountRepo)

	const workers = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := posting.PostJournalEntry(ctx, dto.PostJournalEntryRequest{JournalEntryID: id, PostingDate: time.Now()})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	rows, err := s.repos.LedgerRepo.ListLedgerEntriesByJournalEntryID(ctx, id)
	s.Require().NoError(err)
	s.Len(rows, 2)
}

func (s *PostgresSuite) TestRecurringGenerationIsIdempotent() {
	ctx := context.Background()
	catalog := services.NewCatalogService(s.repos.UnitOfWork, s.repos.AccountRepo)
	_, err := catalog.SyncDefinitions(ctx, dto.LedgerDefinitions{
		Templates: []dto.RecurringTemplateDefinition{{
			ID: "tpl-rent", Code: "RENT", DebitAccountID: "6000", CreditAccountID: "1000",
			Amount: "1200.00", Frequency: "monthly", StartDate: "2024-01-31",
		}},
	}, "loader")
	s.Require().NoError(err)

	recurring := services.NewRecurringService(s.repos.UnitOfWork, s.repos.TemplateRepo)
	target := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	first, err := recurring.GenerateFromTemplate(ctx, dto.GenerateFromTemplateRequest{TemplateID: "tpl-rent", GenerateForDate: &target})
	s.Require().NoError(err)
	s.Equal("REC-RENT-20240229", first.ReferenceNumber)

	second, err := recurring.GenerateFromTemplate(ctx, dto.GenerateFromTemplateRequest{TemplateID: "tpl-rent", GenerateForDate: &target})
	s.Require().NoError(err)
	s.True(second.AlreadyGenerated)
	s.Equal(first.JournalEntryID, second.JournalEntryID)

	tpl, err := s.repos.TemplateRepo.FindTemplateByID(ctx, "tpl-rent")
	s.Require().NoError(err)
	s.Require().NotNil(tpl.LastGeneratedFor)
	s.True(tpl.LastGeneratedFor.Equal(target))

	results, err := recurring.GenerateDue(ctx, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), "scheduler")
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal("REC-RENT-20240131", results[0].ReferenceNumber)
	s.Equal("REC-RENT-20240331", results[1].ReferenceNumber)

	dates, err := s.repos.TemplateRepo.ListGenerationDates(ctx, "tpl-rent", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Require().Len(dates, 2)
	s.True(dates[0].Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))
	s.True(dates[1].Equal(target))
}
