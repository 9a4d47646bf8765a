package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/SscSPs/erp_ledger/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryApplication(t *testing.T) *application {
	t.Helper()
	app, err := newApplication(context.Background(), &config.Config{
		StoreDriver: config.DriverMemory,
		Ledger: config.LedgerConfig{
			ValidateBalances:          true,
			MissingAccountPolicy:      domain.MissingAccountStrict,
			DuplicateGenerationPolicy: domain.DuplicateIdempotent,
			DefaultActor:              "system",
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	start := time.Now().UTC().AddDate(0, 0, -2).Format(dto.DateLayout)
	_, err = app.services.Catalog.SyncDefinitions(context.Background(), dto.LedgerDefinitions{
		Templates: []dto.RecurringTemplateDefinition{
			{ID: "tpl-daily", Code: "DAILY", DebitAccountID: "acc-rent", CreditAccountID: "acc-bank",
				Amount: "10", Frequency: "daily", StartDate: start},
		},
	}, "admin")
	require.NoError(t, err)
	return app
}

func generationCount(app *application) int {
	dates, err := app.repos.TemplateRepo.ListGenerationDates(context.Background(), "tpl-daily", time.Now().UTC().AddDate(0, 0, 1))
	if err != nil {
		return -1
	}
	return len(dates)
}

func TestRunScheduler_GeneratesUntilCanceled(t *testing.T) {
	app := newMemoryApplication(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- runScheduler(ctx, app, 10*time.Millisecond) }()

	// the run straddling midnight may add a fourth day
	require.Eventually(t, func() bool { return generationCount(app) >= 3 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestRunScheduler_CanceledContext(t *testing.T) {
	app := newMemoryApplication(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, runScheduler(ctx, app, time.Hour))
	assert.Zero(t, generationCount(app))
}
