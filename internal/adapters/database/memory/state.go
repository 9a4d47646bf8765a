package memory

import (
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

type generationKey struct {
	templateID string
	targetDate time.Time
}

func newGenerationKey(templateID string, targetDate time.Time) generationKey {
	return generationKey{templateID: templateID, targetDate: domain.CalendarDay(targetDate)}
}

// state is one consistent version of the whole store. Units of work mutate a
// clone and swap it in on success.
type state struct {
	accounts      map[string]domain.Account
	journals      map[string]domain.JournalEntrySnapshot
	ledger        []domain.GeneralLedgerEntry
	ledgerLines   map[string]struct{}
	templates     map[string]domain.RecurringJournalTemplate
	templateCodes map[string]string
	generations   map[generationKey]domain.RecurringGeneration
	outbox        []domain.OutboxEntry
}

func newState() *state {
	return &state{
		accounts:      map[string]domain.Account{},
		journals:      map[string]domain.JournalEntrySnapshot{},
		ledgerLines:   map[string]struct{}{},
		templates:     map[string]domain.RecurringJournalTemplate{},
		templateCodes: map[string]string{},
		generations:   map[generationKey]domain.RecurringGeneration{},
	}
}

func (s *state) clone() *state {
	out := &state{
		accounts:      make(map[string]domain.Account, len(s.accounts)),
		journals:      make(map[string]domain.JournalEntrySnapshot, len(s.journals)),
		ledger:        make([]domain.GeneralLedgerEntry, len(s.ledger)),
		ledgerLines:   make(map[string]struct{}, len(s.ledgerLines)),
		templates:     make(map[string]domain.RecurringJournalTemplate, len(s.templates)),
		templateCodes: make(map[string]string, len(s.templateCodes)),
		generations:   make(map[generationKey]domain.RecurringGeneration, len(s.generations)),
		outbox:        make([]domain.OutboxEntry, len(s.outbox)),
	}
	for k, v := range s.accounts {
		out.accounts[k] = v
	}
	// snapshots are replaced whole, never edited in place, so sharing line slices is safe
	for k, v := range s.journals {
		out.journals[k] = v
	}
	copy(out.ledger, s.ledger)
	for k := range s.ledgerLines {
		out.ledgerLines[k] = struct{}{}
	}
	for k, v := range s.templates {
		out.templates[k] = v
	}
	for k, v := range s.templateCodes {
		out.templateCodes[k] = v
	}
	for k, v := range s.generations {
		out.generations[k] = v
	}
	copy(out.outbox, s.outbox)
	return out
}

func (s *state) findAccount(accountID string) (*domain.Account, error) {
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &account, nil
}

func (s *state) saveAccount(account domain.Account) error {
	if account.AccountID == "" {
		return fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}
	if existing, ok := s.accounts[account.AccountID]; ok {
		account.CreatedAt = existing.CreatedAt
		account.CreatedBy = existing.CreatedBy
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *state) findJournal(journalEntryID string) (*domain.JournalEntry, error) {
	snap, ok := s.journals[journalEntryID]
	if !ok {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, journalEntryID)
	}
	return domain.RestoreJournalEntry(snap), nil
}

func (s *state) findLines(journalEntryID string) ([]domain.JournalEntryLine, error) {
	snap, ok := s.journals[journalEntryID]
	if !ok {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, journalEntryID)
	}
	lines := make([]domain.JournalEntryLine, len(snap.Lines))
	copy(lines, snap.Lines)
	return lines, nil
}

func (s *state) insertJournal(entry *domain.JournalEntry) error {
	if _, ok := s.journals[entry.ID()]; ok {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.ID())
	}
	s.journals[entry.ID()] = entry.Snapshot()
	return nil
}

// replaceJournal overwrites a stored draft when its version still matches.
func (s *state) replaceJournal(entry *domain.JournalEntry, expectedVersion int) error {
	stored, ok := s.journals[entry.ID()]
	if !ok {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entry.ID())
	}
	if stored.Status == domain.Posted {
		return fmt.Errorf("%w: journal entry %s is already posted", apperrors.ErrConflict, entry.ID())
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("%w: journal entry %s is at version %d, expected %d",
			apperrors.ErrConflict, entry.ID(), stored.Version, expectedVersion)
	}
	s.journals[entry.ID()] = entry.Snapshot()
	return nil
}

func (s *state) appendLedger(entries []domain.GeneralLedgerEntry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := s.ledgerLines[e.JournalLineID]; dup {
			return fmt.Errorf("%w: journal line %s already has a ledger entry", apperrors.ErrDuplicate, e.JournalLineID)
		}
		if _, dup := seen[e.JournalLineID]; dup {
			return fmt.Errorf("%w: journal line %s appears twice", apperrors.ErrDuplicate, e.JournalLineID)
		}
		seen[e.JournalLineID] = struct{}{}
	}
	for _, e := range entries {
		s.ledger = append(s.ledger, e)
		s.ledgerLines[e.JournalLineID] = struct{}{}
	}
	return nil
}

func (s *state) listLedger(journalEntryID string) []domain.GeneralLedgerEntry {
	var out []domain.GeneralLedgerEntry
	for _, e := range s.ledger {
		if e.JournalEntryID == journalEntryID {
			out = append(out, e)
		}
	}
	return out
}

func (s *state) findTemplate(templateID string) (*domain.RecurringJournalTemplate, error) {
	t, ok := s.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("%w: recurring template %s", apperrors.ErrNotFound, templateID)
	}
	return &t, nil
}

func (s *state) findTemplateByCode(code string) (*domain.RecurringJournalTemplate, error) {
	id, ok := s.templateCodes[code]
	if !ok {
		return nil, fmt.Errorf("%w: recurring template code %s", apperrors.ErrNotFound, code)
	}
	return s.findTemplate(id)
}

func (s *state) listActiveTemplates() []domain.RecurringJournalTemplate {
	out := make([]domain.RecurringJournalTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		if t.IsActive {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TemplateCode < out[j].TemplateCode })
	return out
}

func (s *state) saveTemplate(t domain.RecurringJournalTemplate, expectedVersion int) error {
	if owner, taken := s.templateCodes[t.TemplateCode]; taken && owner != t.TemplateID {
		return fmt.Errorf("%w: recurring template code %s", apperrors.ErrDuplicate, t.TemplateCode)
	}
	stored, exists := s.templates[t.TemplateID]
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
		delete(s.templateCodes, stored.TemplateCode)
	}
	s.templates[t.TemplateID] = t
	s.templateCodes[t.TemplateCode] = t.TemplateID
	return nil
}

func (s *state) findGeneration(templateID string, targetDate time.Time) (*domain.RecurringGeneration, error) {
	g, ok := s.generations[newGenerationKey(templateID, targetDate)]
	if !ok {
		return nil, fmt.Errorf("%w: generation of %s for %s", apperrors.ErrNotFound, templateID, targetDate.Format("2006-01-02"))
	}
	return &g, nil
}

func (s *state) listGenerationDates(templateID string, through time.Time) []time.Time {
	limit := domain.CalendarDay(through)
	var out []time.Time
	for k := range s.generations {
		if k.templateID == templateID && !k.targetDate.After(limit) {
			out = append(out, k.targetDate)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (s *state) insertGeneration(g domain.RecurringGeneration) error {
	key := newGenerationKey(g.TemplateID, g.TargetDate)
	if _, ok := s.generations[key]; ok {
		return fmt.Errorf("%w: generation of %s for %s", apperrors.ErrDuplicate, g.TemplateID, key.targetDate.Format("2006-01-02"))
	}
	g.TargetDate = key.targetDate
	s.generations[key] = g
	return nil
}

func (s *state) storeOutbox(entries []domain.OutboxEntry) {
	for _, e := range entries {
		e.Payload = append([]byte(nil), e.Payload...)
		s.outbox = append(s.outbox, e)
	}
}

func (s *state) fetchUnpublished(batchSize int) []domain.OutboxEntry {
	var out []domain.OutboxEntry
	for _, e := range s.outbox {
		if len(out) >= batchSize {
			break
		}
		if e.PublishedAt == nil {
			out = append(out, e)
		}
	}
	return out
}

func (s *state) markPublished(ids []string, publishedAt time.Time) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	at := publishedAt.UTC()
	for i := range s.outbox {
		if _, ok := wanted[s.outbox[i].ID]; ok && s.outbox[i].PublishedAt == nil {
			s.outbox[i].PublishedAt = &at
		}
	}
}
