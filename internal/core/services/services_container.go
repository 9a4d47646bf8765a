package services

import (
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/platform/config"
)

// PolicyFromConfig maps the LEDGER_* settings onto a Policy.
func PolicyFromConfig(cfg config.LedgerConfig) Policy {
	return Policy{
		ValidateBalances:       cfg.ValidateBalances,
		MissingAccounts:        cfg.MissingAccountPolicy,
		DuplicateGenerations:   cfg.DuplicateGenerationPolicy,
		EnforceLineExclusivity: cfg.EnforceLineExclusivity,
		DefaultActor:           cfg.DefaultActor,
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...ServiceOption) *portssvc.ServiceContainer {
	options := append([]ServiceOption{WithPolicy(PolicyFromConfig(cfg.Ledger))}, opts...)

	return &portssvc.ServiceContainer{
		Posting:   NewPostingService(repos.UnitOfWork, repos.AccountRepo, options...),
		Recurring: NewRecurringService(repos.UnitOfWork, repos.TemplateRepo, options...),
		Journal:   NewJournalService(repos.UnitOfWork, repos.JournalRepo, repos.LedgerRepo, options...),
		Catalog:   NewCatalogService(repos.UnitOfWork, repos.AccountRepo, options...),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.PostingSvc         = (*postingService)(nil)
	_ portssvc.RecurringSvcFacade = (*recurringService)(nil)
	_ portssvc.JournalSvcFacade   = (*journalService)(nil)
	_ portssvc.CatalogSvc         = (*catalogService)(nil)
)
