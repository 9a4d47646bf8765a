package services

// ServiceContainer holds instances of all the application services.
// The CLI commands and the worker only reach the core through it.
type ServiceContainer struct {
	Posting   PostingSvc
	Recurring RecurringSvcFacade
	Journal   JournalSvcFacade
	Catalog   CatalogSvc
}
