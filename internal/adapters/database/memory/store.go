// Package memory is an in-process store used by tests and by the memory
// store driver. Units of work are serialized and apply atomically.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
)

// Store keeps every aggregate in memory.
type Store struct {
	// txMu serializes writers; mu guards the committed state pointer.
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *state
}

// New returns an empty store.
func New() *Store {
	return &Store{state: newState()}
}

var (
	_ portsrepo.UnitOfWork              = (*Store)(nil)
	_ portsrepo.JournalEntryReader      = (*Store)(nil)
	_ portsrepo.LedgerReader            = (*Store)(nil)
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.RecurringTemplateReader = (*Store)(nil)
	_ portsrepo.OutboxRepository        = (*Store)(nil)
)

// Provider exposes the store through the repository ports.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UnitOfWork:   s,
		JournalRepo:  s,
		LedgerRepo:   s,
		AccountRepo:  s,
		TemplateRepo: s,
		OutboxRepo:   s,
		Close:        func() error { return nil },
	}
}

// Do runs fn against a private copy of the state and publishes the copy
// only when fn succeeds and ctx is still live.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, stores portsrepo.Stores) error) error {
	return s.apply(ctx, func(work *state) error {
		tx := &txStore{st: work}
		return fn(ctx, portsrepo.Stores{Journals: tx, Ledger: tx, Templates: tx, Outbox: tx})
	})
}

func (s *Store) apply(ctx context.Context, fn func(work *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()

	if err := fn(work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = work
	s.mu.Unlock()
	return nil
}

// read returns the committed state. Published states are never mutated.
func (s *Store) read() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) FindJournalEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read().findJournal(journalEntryID)
}

func (s *Store) FindLinesByJournalEntryID(ctx context.Context, journalEntryID string) ([]domain.JournalEntryLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read().findLines(journalEntryID)
}

func (s *Store) ListLedgerEntriesByJournalEntryID(ctx context.Context, journalEntryID string) ([]domain.GeneralLedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read().listLedger(journalEntryID), nil
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read().findAccount(accountID)
}

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	return s.apply(ctx, func(st *state) error { return st.saveAccount(account) })
}

func (s *Store) FindTemplateByID(ctx context.Context, templateID string) (*domain.RecurringJournalTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read().findTemplate(templateID)
}

func (s *Store) FindTemplateByCode(ctx context.Context, templateCode string) (*domain.RecurringJournalTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read().findTemplateByCode(templateCode)
}

func (s *Store) ListActiveTemplates(ctx context.Context) ([]domain.RecurringJournalTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read().listActiveTemplates(), nil
}

func (s *Store) FindGeneration(ctx context.Context, templateID string, targetDate time.Time) (*domain.RecurringGeneration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read().findGeneration(templateID, targetDate)
}

func (s *Store) ListGenerationDates(ctx context.Context, templateID string, through time.Time) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read().listGenerationDates(templateID, through), nil
}

func (s *Store) StoreOutboxEntries(ctx context.Context, entries []domain.OutboxEntry) error {
	return s.apply(ctx, func(st *state) error {
		st.storeOutbox(entries)
		return nil
	})
}

func (s *Store) FetchUnpublished(ctx context.Context, batchSize int) ([]domain.OutboxEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.read().fetchUnpublished(batchSize), nil
}

func (s *Store) MarkPublished(ctx context.Context, ids []string, publishedAt time.Time) error {
	return s.apply(ctx, func(st *state) error {
		st.markPublished(ids, publishedAt)
		return nil
	})
}

// txStore is the view handed to a unit of work. It needs no locking of its
// own because the store holds txMu for its whole life.
type txStore struct {
	st *state
}

var (
	_ portsrepo.JournalEntryRepository      = (*txStore)(nil)
	_ portsrepo.LedgerRepository            = (*txStore)(nil)
	_ portsrepo.RecurringTemplateRepository = (*txStore)(nil)
	_ portsrepo.OutboxWriter                = (*txStore)(nil)
)

func (t *txStore) FindJournalEntryByID(_ context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	return t.st.findJournal(journalEntryID)
}

func (t *txStore) FindLinesByJournalEntryID(_ context.Context, journalEntryID string) ([]domain.JournalEntryLine, error) {
	return t.st.findLines(journalEntryID)
}

func (t *txStore) FindJournalEntryByIDForUpdate(_ context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	return t.st.findJournal(journalEntryID)
}

func (t *txStore) InsertJournalEntry(_ context.Context, entry *domain.JournalEntry) error {
	return t.st.insertJournal(entry)
}

func (t *txStore) UpdateDraftJournalEntry(_ context.Context, entry *domain.JournalEntry, expectedVersion int) error {
	return t.st.replaceJournal(entry, expectedVersion)
}

func (t *txStore) MarkJournalEntryPosted(_ context.Context, entry *domain.JournalEntry, expectedVersion int) error {
	return t.st.replaceJournal(entry, expectedVersion)
}

func (t *txStore) ListLedgerEntriesByJournalEntryID(_ context.Context, journalEntryID string) ([]domain.GeneralLedgerEntry, error) {
	return t.st.listLedger(journalEntryID), nil
}

func (t *txStore) AppendLedgerEntries(_ context.Context, entries []domain.GeneralLedgerEntry) error {
	return t.st.appendLedger(entries)
}

func (t *txStore) FindTemplateByID(_ context.Context, templateID string) (*domain.RecurringJournalTemplate, error) {
	return t.st.findTemplate(templateID)
}

func (t *txStore) FindTemplateByCode(_ context.Context, templateCode string) (*domain.RecurringJournalTemplate, error) {
	return t.st.findTemplateByCode(templateCode)
}

func (t *txStore) ListActiveTemplates(_ context.Context) ([]domain.RecurringJournalTemplate, error) {
	return t.st.listActiveTemplates(), nil
}

func (t *txStore) FindGeneration(_ context.Context, templateID string, targetDate time.Time) (*domain.RecurringGeneration, error) {
	return t.st.findGeneration(templateID, targetDate)
}

func (t *txStore) ListGenerationDates(_ context.Context, templateID string, through time.Time) ([]time.Time, error) {
	return t.st.listGenerationDates(templateID, through), nil
}

func (t *txStore) FindTemplateByIDForUpdate(_ context.Context, templateID string) (*domain.RecurringJournalTemplate, error) {
	return t.st.findTemplate(templateID)
}

func (t *txStore) SaveTemplate(_ context.Context, template domain.RecurringJournalTemplate, expectedVersion int) error {
	return t.st.saveTemplate(template, expectedVersion)
}

func (t *txStore) InsertGeneration(_ context.Context, generation domain.RecurringGeneration) error {
	return t.st.insertGeneration(generation)
}

func (t *txStore) StoreOutboxEntries(_ context.Context, entries []domain.OutboxEntry) error {
	t.st.storeOutbox(entries)
	return nil
}
