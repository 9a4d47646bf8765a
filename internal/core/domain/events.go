package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventJournalEntryPosted = "ledger.journal_entry.posted"
	EventRecurringGenerated = "ledger.recurring.generated"

	AggregateJournalEntry      = "JournalEntry"
	AggregateRecurringTemplate = "RecurringJournalTemplate"
)

// OutboxEntry is a domain event waiting to be relayed to the broker.
type OutboxEntry struct {
	ID            string     `json:"id"`
	AggregateID   string     `json:"aggregateID"`
	AggregateType string     `json:"aggregateType"`
	EventType     string     `json:"eventType"`
	Payload       []byte     `json:"payload"`
	CreatedAt     time.Time  `json:"createdAt"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
}

func newOutboxEntry(aggregateID, aggregateType, eventType string, payload any, at time.Time) (OutboxEntry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return OutboxEntry{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return OutboxEntry{
		ID:            uuid.NewString(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       raw,
		CreatedAt:     at.UTC(),
	}, nil
}

// JournalEntryPosted is the payload of EventJournalEntryPosted.
type JournalEntryPosted struct {
	JournalEntryID  string          `json:"journalEntryID"`
	ReferenceNumber string          `json:"referenceNumber"`
	PostingDate     time.Time       `json:"postingDate"`
	PostedBy        string          `json:"postedBy"`
	PostedAt        time.Time       `json:"postedAt"`
	LedgerEntryIDs  []string        `json:"ledgerEntryIDs"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
}

// NewJournalEntryPostedEvent builds the outbox row for a posted entry.
func NewJournalEntryPostedEvent(entry *JournalEntry, ledger []GeneralLedgerEntry, reference string, at time.Time) (OutboxEntry, error) {
	payload := JournalEntryPosted{
		JournalEntryID:  entry.ID(),
		ReferenceNumber: reference,
		PostingDate:     entry.PostingDate(),
		PostedBy:        entry.PostedBy(),
		PostedAt:        at.UTC(),
		LedgerEntryIDs:  make([]string, 0, len(ledger)),
		TotalDebit:      decimal.Zero,
		TotalCredit:     decimal.Zero,
	}
	for _, row := range ledger {
		payload.LedgerEntryIDs = append(payload.LedgerEntryIDs, row.LedgerEntryID)
		payload.TotalDebit = payload.TotalDebit.Add(row.Debit)
		payload.TotalCredit = payload.TotalCredit.Add(row.Credit)
	}
	return newOutboxEntry(entry.ID(), AggregateJournalEntry, EventJournalEntryPosted, payload, at)
}

// RecurringGenerated is the payload of EventRecurringGenerated.
type RecurringGenerated struct {
	TemplateID      string          `json:"templateID"`
	TemplateCode    string          `json:"templateCode"`
	TargetDate      time.Time       `json:"targetDate"`
	JournalEntryID  string          `json:"journalEntryID"`
	ReferenceNumber string          `json:"referenceNumber"`
	Amount          decimal.Decimal `json:"amount"`
	GeneratedBy     string          `json:"generatedBy"`
}

// NewRecurringGeneratedEvent builds the outbox row for a generated draft.
func NewRecurringGeneratedEvent(t RecurringJournalTemplate, gen RecurringGeneration, reference string) (OutboxEntry, error) {
	payload := RecurringGenerated{
		TemplateID:      t.TemplateID,
		TemplateCode:    t.TemplateCode,
		TargetDate:      gen.TargetDate,
		JournalEntryID:  gen.JournalEntryID,
		ReferenceNumber: reference,
		Amount:          t.Amount,
		GeneratedBy:     gen.GeneratedBy,
	}
	return newOutboxEntry(t.TemplateID, AggregateRecurringTemplate, EventRecurringGenerated, payload, gen.GeneratedAt)
}
