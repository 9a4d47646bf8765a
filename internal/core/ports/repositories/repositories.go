package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	UnitOfWork   UnitOfWork
	JournalRepo  JournalEntryReader
	LedgerRepo   LedgerReader
	AccountRepo  AccountRepositoryFacade
	TemplateRepo RecurringTemplateReader
	OutboxRepo   OutboxRepository

	// Close releases the underlying store.
	Close func() error
}
