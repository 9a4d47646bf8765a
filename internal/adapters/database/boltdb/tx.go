package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_ledger/internal/models"
	"github.com/SscSPs/erp_ledger/internal/utils/mapping"
	bolt "go.etcd.io/bbolt"
)

// txView implements the repository ports on top of one bolt transaction.
// Writes fail with bolt.ErrTxNotWritable on a read-only transaction.
type txView struct {
	tx *bolt.Tx
}

var (
	_ portsrepo.JournalEntryRepository      = (*txView)(nil)
	_ portsrepo.LedgerRepository            = (*txView)(nil)
	_ portsrepo.RecurringTemplateRepository = (*txView)(nil)
	_ portsrepo.OutboxWriter                = (*txView)(nil)
)

func (v *txView) bucket(name string) *bolt.Bucket {
	return v.tx.Bucket([]byte(name))
}

func getJSON(b *bolt.Bucket, key []byte, value any) (bool, error) {
	data := b.Get(key)
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return true, nil
}

func generationKey(templateID string, targetDate time.Time) []byte {
	return []byte(templateID + "/" + domain.CalendarDay(targetDate).Format("20060102"))
}

func (v *txView) loadJournal(journalEntryID string) (*models.StoredJournalEntry, error) {
	var stored models.StoredJournalEntry
	found, err := getJSON(v.bucket(BucketJournals), []byte(journalEntryID), &stored)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, journalEntryID)
	}
	return &stored, nil
}

func (v *txView) putJournal(entry *domain.JournalEntry) error {
	header, lines := mapping.ToModelJournalEntry(entry)
	return putJSON(v.bucket(BucketJournals), []byte(header.JournalEntryID), models.StoredJournalEntry{JournalEntry: header, Lines: lines})
}

func (v *txView) FindJournalEntryByID(_ context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	stored, err := v.loadJournal(journalEntryID)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainJournalEntry(stored.JournalEntry, stored.Lines), nil
}

// FindJournalEntryByIDForUpdate needs no extra locking: bolt allows one
// writer at a time.
func (v *txView) FindJournalEntryByIDForUpdate(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	return v.FindJournalEntryByID(ctx, journalEntryID)
}

func (v *txView) FindLinesByJournalEntryID(_ context.Context, journalEntryID string) ([]domain.JournalEntryLine, error) {
	stored, err := v.loadJournal(journalEntryID)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainJournalEntryLines(stored.Lines), nil
}

func (v *txView) InsertJournalEntry(_ context.Context, entry *domain.JournalEntry) error {
	if v.bucket(BucketJournals).Get([]byte(entry.ID())) != nil {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.ID())
	}
	return v.putJournal(entry)
}

func (v *txView) replaceDraft(entry *domain.JournalEntry, expectedVersion int) error {
	stored, err := v.loadJournal(entry.ID())
	if err != nil {
		return err
	}
	if stored.Status == string(domain.Posted) {
		return fmt.Errorf("%w: journal entry %s is already posted", apperrors.ErrConflict, entry.ID())
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("%w: journal entry %s is at version %d, expected %d",
			apperrors.ErrConflict, entry.ID(), stored.Version, expectedVersion)
	}
	return v.putJournal(entry)
}

func (v *txView) UpdateDraftJournalEntry(_ context.Context, entry *domain.JournalEntry, expectedVersion int) error {
	return v.replaceDraft(entry, expectedVersion)
}

func (v *txView) MarkJournalEntryPosted(_ context.Context, entry *domain.JournalEntry, expectedVersion int) error {
	return v.replaceDraft(entry, expectedVersion)
}

// Ledger rows are keyed "<journal entry id>/<sequence>" so a prefix scan
// returns them in append order.
func (v *txView) AppendLedgerEntries(_ context.Context, entries []domain.GeneralLedgerEntry) error {
	ledger := v.bucket(BucketLedger)
	lines := v.bucket(BucketLedgerLines)
	for _, e := range entries {
		if lines.Get([]byte(e.JournalLineID)) != nil {
			return fmt.Errorf("%w: journal line %s already has a ledger entry", apperrors.ErrDuplicate, e.JournalLineID)
		}
		seq, err := ledger.NextSequence()
		if err != nil {
			return err
		}
		key := []byte(fmt.Sprintf("%s/%020d", e.JournalEntryID, seq))
		if err := putJSON(ledger, key, mapping.ToModelLedgerEntry(e)); err != nil {
			return err
		}
		if err := lines.Put([]byte(e.JournalLineID), []byte(e.LedgerEntryID)); err != nil {
			return err
		}
	}
	return nil
}

func (v *txView) ListLedgerEntriesByJournalEntryID(_ context.Context, journalEntryID string) ([]domain.GeneralLedgerEntry, error) {
	var out []domain.GeneralLedgerEntry
	prefix := []byte(journalEntryID + "/")
	c := v.bucket(BucketLedger).Cursor()
	for k, data := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, data = c.Next() {
		var m models.GeneralLedgerEntry
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ledger entry: %w", err)
		}
		out = append(out, mapping.ToDomainLedgerEntry(m))
	}
	return out, nil
}

func (v *txView) FindTemplateByID(_ context.Context, templateID string) (*domain.RecurringJournalTemplate, error) {
	var m models.RecurringJournalTemplate
	found, err := getJSON(v.bucket(BucketTemplates), []byte(templateID), &m)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: recurring template %s", apperrors.ErrNotFound, templateID)
	}
	t := mapping.ToDomainRecurringTemplate(m)
	return &t, nil
}

func (v *txView) FindTemplateByIDForUpdate(ctx context.Context, templateID string) (*domain.RecurringJournalTemplate, error) {
	return v.FindTemplateByID(ctx, templateID)
}

func (v *txView) FindTemplateByCode(ctx context.Context, templateCode string) (*domain.RecurringJournalTemplate, error) {
	id := v.bucket(BucketTemplateCodes).Get([]byte(templateCode))
	if id == nil {
		return nil, fmt.Errorf("%w: recurring template code %s", apperrors.ErrNotFound, templateCode)
	}
	return v.FindTemplateByID(ctx, string(id))
}

func (v *txView) ListActiveTemplates(_ context.Context) ([]domain.RecurringJournalTemplate, error) {
	var out []domain.RecurringJournalTemplate
	err := v.bucket(BucketTemplates).ForEach(func(_, data []byte) error {
		var m models.RecurringJournalTemplate
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("failed to unmarshal template: %w", err)
		}
		if m.IsActive {
			out = append(out, mapping.ToDomainRecurringTemplate(m))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].TemplateCode < out[j].TemplateCode })
	return out, err
}

func (v *txView) SaveTemplate(ctx context.Context, t domain.RecurringJournalTemplate, expectedVersion int) error {
	codes := v.bucket(BucketTemplateCodes)
	if owner := codes.Get([]byte(t.TemplateCode)); owner != nil && string(owner) != t.TemplateID {
		return fmt.Errorf("%w: recurring template code %s", apperrors.ErrDuplicate, t.TemplateCode)
	}
	stored, err := v.FindTemplateByID(ctx, t.TemplateID)
	exists := err == nil
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	switch {
	case expectedVersion == 0 && exists:
		return fmt.Errorf("%w: recurring template %s", apperrors.ErrDuplicate, t.TemplateID)
	case expectedVersion != 0 && !exists:
		return fmt.Errorf("%w: recurring template %s", apperrors.ErrNotFound, t.TemplateID)
	case expectedVersion != 0 && stored.Version != expectedVersion:
		return fmt.Errorf("%w: recurring template %s is at version %d, expected %d",
			apperrors.ErrConflict, t.TemplateID, stored.Version, expectedVersion)
	}
	if exists && stored.TemplateCode != t.TemplateCode {
		if err := codes.Delete([]byte(stored.TemplateCode)); err != nil {
			return err
		}
	}
	if err := putJSON(v.bucket(BucketTemplates), []byte(t.TemplateID), mapping.ToModelRecurringTemplate(t)); err != nil {
		return err
	}
	return codes.Put([]byte(t.TemplateCode), []byte(t.TemplateID))
}

func (v *txView) FindGeneration(_ context.Context, templateID string, targetDate time.Time) (*domain.RecurringGeneration, error) {
	var m models.RecurringGeneration
	found, err := getJSON(v.bucket(BucketGenerations), generationKey(templateID, targetDate), &m)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: generation of %s for %s", apperrors.ErrNotFound, templateID, targetDate.Format("2006-01-02"))
	}
	g := mapping.ToDomainRecurringGeneration(m)
	return &g, nil
}

func (v *txView) ListGenerationDates(_ context.Context, templateID string, through time.Time) ([]time.Time, error) {
	limit := domain.CalendarDay(through)
	prefix := []byte(templateID + "/")
	var out []time.Time
	c := v.bucket(BucketGenerations).Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		day, err := time.Parse("20060102", string(k[len(prefix):]))
		if err != nil {
			return nil, fmt.Errorf("failed to parse generation key %q: %w", k, err)
		}
		if day.After(limit) {
			break
		}
		out = append(out, day)
	}
	return out, nil
}

func (v *txView) InsertGeneration(_ context.Context, g domain.RecurringGeneration) error {
	b := v.bucket(BucketGenerations)
	key := generationKey(g.TemplateID, g.TargetDate)
	if b.Get(key) != nil {
		return fmt.Errorf("%w: generation of %s for %s", apperrors.ErrDuplicate, g.TemplateID, g.TargetDate.Format("2006-01-02"))
	}
	g.TargetDate = domain.CalendarDay(g.TargetDate)
	return putJSON(b, key, mapping.ToModelRecurringGeneration(g))
}

func (v *txView) StoreOutboxEntries(_ context.Context, entries []domain.OutboxEntry) error {
	outbox := v.bucket(BucketOutbox)
	index := v.bucket(BucketOutboxIDs)
	for _, e := range entries {
		seq, err := outbox.NextSequence()
		if err != nil {
			return err
		}
		key := itob(seq)
		if err := putJSON(outbox, key, mapping.ToModelOutboxEntry(e)); err != nil {
			return err
		}
		if err := index.Put([]byte(e.ID), key); err != nil {
			return err
		}
	}
	return nil
}
