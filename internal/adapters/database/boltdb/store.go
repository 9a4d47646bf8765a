// Package boltdb stores the ledger in a single bbolt file. Every unit of
// work is one read-write bolt transaction.
package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_ledger/internal/models"
	"github.com/SscSPs/erp_ledger/internal/utils/mapping"
	bolt "go.etcd.io/bbolt"
)

// Bucket names.
const (
	BucketAccounts      = "accounts"
	BucketJournals      = "journal_entries"
	BucketLedger        = "ledger_entries"
	BucketLedgerLines   = "ledger_lines"
	BucketTemplates     = "templates"
	BucketTemplateCodes = "template_codes"
	BucketGenerations   = "generations"
	BucketOutbox        = "outbox"
	BucketOutboxIDs     = "outbox_ids"
)

var allBuckets = []string{
	BucketAccounts, BucketJournals, BucketLedger, BucketLedgerLines, BucketTemplates,
	BucketTemplateCodes, BucketGenerations, BucketOutbox, BucketOutboxIDs,
}

// Store represents the bbolt database wrapper.
type Store struct {
	db *bolt.DB

	// accounts mirrors the accounts bucket so lookups made while a write
	// transaction is open never start a second bolt transaction.
	accountsMu sync.RWMutex
	accounts   map[string]domain.Account
}

// Open opens or creates the database file and initializes buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, dbError("failed to open database", err)
	}

	s := &Store{db: db, accounts: map[string]domain.Account{}}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return tx.Bucket([]byte(BucketAccounts)).ForEach(func(_, v []byte) error {
			var m models.Account
			if err := json.Unmarshal(v, &m); err != nil {
				return fmt.Errorf("failed to unmarshal account: %w", err)
			}
			s.accounts[m.AccountID] = mapping.ToDomainAccount(m)
			return nil
		})
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
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
		Close:        s.Close,
	}
}

// Do runs fn inside one read-write transaction.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, stores portsrepo.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		view := &txView{tx: tx}
		if err := fn(ctx, portsrepo.Stores{Journals: view, Ledger: view, Templates: view, Outbox: view}); err != nil {
			return err
		}
		// a canceled caller must not see its work committed
		return ctx.Err()
	})
	return dbError("bolt update failed", err)
}

func (s *Store) view(ctx context.Context, fn func(v *txView) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.View(func(tx *bolt.Tx) error { return fn(&txView{tx: tx}) })
	return dbError("bolt read failed", err)
}

func (s *Store) FindJournalEntryByID(ctx context.Context, journalEntryID string) (entry *domain.JournalEntry, err error) {
	err = s.view(ctx, func(v *txView) error {
		entry, err = v.FindJournalEntryByID(ctx, journalEntryID)
		return err
	})
	return entry, err
}

func (s *Store) FindLinesByJournalEntryID(ctx context.Context, journalEntryID string) (lines []domain.JournalEntryLine, err error) {
	err = s.view(ctx, func(v *txView) error {
		lines, err = v.FindLinesByJournalEntryID(ctx, journalEntryID)
		return err
	})
	return lines, err
}

func (s *Store) ListLedgerEntriesByJournalEntryID(ctx context.Context, journalEntryID string) (rows []domain.GeneralLedgerEntry, err error) {
	err = s.view(ctx, func(v *txView) error {
		rows, err = v.ListLedgerEntriesByJournalEntryID(ctx, journalEntryID)
		return err
	})
	return rows, err
}

func (s *Store) FindTemplateByID(ctx context.Context, templateID string) (t *domain.RecurringJournalTemplate, err error) {
	err = s.view(ctx, func(v *txView) error {
		t, err = v.FindTemplateByID(ctx, templateID)
		return err
	})
	return t, err
}

func (s *Store) FindTemplateByCode(ctx context.Context, templateCode string) (t *domain.RecurringJournalTemplate, err error) {
	err = s.view(ctx, func(v *txView) error {
		t, err = v.FindTemplateByCode(ctx, templateCode)
		return err
	})
	return t, err
}

func (s *Store) ListActiveTemplates(ctx context.Context) (out []domain.RecurringJournalTemplate, err error) {
	err = s.view(ctx, func(v *txView) error {
		out, err = v.ListActiveTemplates(ctx)
		return err
	})
	return out, err
}

func (s *Store) FindGeneration(ctx context.Context, templateID string, targetDate time.Time) (g *domain.RecurringGeneration, err error) {
	err = s.view(ctx, func(v *txView) error {
		g, err = v.FindGeneration(ctx, templateID, targetDate)
		return err
	})
	return g, err
}

func (s *Store) ListGenerationDates(ctx context.Context, templateID string, through time.Time) (out []time.Time, err error) {
	err = s.view(ctx, func(v *txView) error {
		out, err = v.ListGenerationDates(ctx, templateID, through)
		return err
	})
	return out, err
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.accountsMu.RLock()
	defer s.accountsMu.RUnlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &account, nil
}

// SaveAccount writes the account through to disk and then to the cache.
func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if account.AccountID == "" {
		return fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}
	// accountsMu is never held across a bolt transaction
	s.accountsMu.RLock()
	existing, ok := s.accounts[account.AccountID]
	s.accountsMu.RUnlock()
	if ok {
		account.CreatedAt = existing.CreatedAt
		account.CreatedBy = existing.CreatedBy
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket([]byte(BucketAccounts)), []byte(account.AccountID), mapping.ToModelAccount(account))
	})
	if err != nil {
		return dbError("failed to save account", err)
	}
	s.accountsMu.Lock()
	s.accounts[account.AccountID] = account
	s.accountsMu.Unlock()
	return nil
}

func (s *Store) StoreOutboxEntries(ctx context.Context, entries []domain.OutboxEntry) error {
	return s.Do(ctx, func(ctx context.Context, stores portsrepo.Stores) error {
		return stores.Outbox.StoreOutboxEntries(ctx, entries)
	})
}

func (s *Store) FetchUnpublished(ctx context.Context, batchSize int) (out []domain.OutboxEntry, err error) {
	err = s.view(ctx, func(v *txView) error {
		c := v.tx.Bucket([]byte(BucketOutbox)).Cursor()
		for k, data := c.First(); k != nil && len(out) < batchSize; k, data = c.Next() {
			var m models.OutboxEntry
			if err := json.Unmarshal(data, &m); err != nil {
				return fmt.Errorf("failed to unmarshal outbox entry: %w", err)
			}
			if m.PublishedAt == nil {
				out = append(out, mapping.ToDomainOutboxEntry(m))
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) MarkPublished(ctx context.Context, ids []string, publishedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	at := publishedAt.UTC()
	err := s.db.Update(func(tx *bolt.Tx) error {
		outbox := tx.Bucket([]byte(BucketOutbox))
		index := tx.Bucket([]byte(BucketOutboxIDs))
		for _, id := range ids {
			raw := index.Get([]byte(id))
			if raw == nil {
				continue
			}
			key := append([]byte(nil), raw...)
			var m models.OutboxEntry
			if err := json.Unmarshal(outbox.Get(key), &m); err != nil {
				return fmt.Errorf("failed to unmarshal outbox entry %s: %w", id, err)
			}
			if m.PublishedAt != nil {
				continue
			}
			m.PublishedAt = &at
			if err := putJSON(outbox, key, m); err != nil {
				return err
			}
		}
		return nil
	})
	return dbError("failed to mark outbox entries published", err)
}

// dbError wraps a bolt or encoding failure as a persistence error. Errors
// that already carry a kind, context errors included, pass through.
func dbError(msg string, err error) error {
	if err == nil || apperrors.KindOf(err) != apperrors.KindInternal {
		return err
	}
	return apperrors.NewAppError(500, msg, err)
}

func putJSON(b *bolt.Bucket, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return b.Put(key, data)
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
