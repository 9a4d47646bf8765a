package mapping

import (
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/models"
)

// ToModelRecurringTemplate converts a domain template to its stored row
func ToModelRecurringTemplate(d domain.RecurringJournalTemplate) models.RecurringJournalTemplate {
	return models.RecurringJournalTemplate{
		TemplateID:                  d.TemplateID,
		TemplateCode:                d.TemplateCode,
		Description:                 d.Description,
		DebitAccountID:              d.DebitAccountID,
		CreditAccountID:             d.CreditAccountID,
		Amount:                      d.Amount,
		PostingBatchID:              d.PostingBatchID,
		SourceTag:                   d.SourceTag,
		Frequency:                   string(d.Frequency),
		StartDate:                   d.StartDate,
		IsActive:                    d.IsActive,
		LastGeneratedFor:            d.LastGeneratedFor,
		LastGeneratedJournalEntryID: d.LastGeneratedJournalEntryID,
		Version:                     d.Version,
		AuditFields:                 ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRecurringTemplate converts a stored row to a domain template
func ToDomainRecurringTemplate(m models.RecurringJournalTemplate) domain.RecurringJournalTemplate {
	return domain.RecurringJournalTemplate{
		TemplateID:                  m.TemplateID,
		TemplateCode:                m.TemplateCode,
		Description:                 m.Description,
		DebitAccountID:              m.DebitAccountID,
		CreditAccountID:             m.CreditAccountID,
		Amount:                      m.Amount,
		PostingBatchID:              m.PostingBatchID,
		SourceTag:                   m.SourceTag,
		Frequency:                   domain.RecurrenceFrequency(m.Frequency),
		StartDate:                   m.StartDate,
		IsActive:                    m.IsActive,
		LastGeneratedFor:            m.LastGeneratedFor,
		LastGeneratedJournalEntryID: m.LastGeneratedJournalEntryID,
		Version:                     m.Version,
		AuditFields:                 ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelRecurringGeneration converts a domain generation marker to its stored row
func ToModelRecurringGeneration(d domain.RecurringGeneration) models.RecurringGeneration {
	return models.RecurringGeneration(d)
}

// ToDomainRecurringGeneration converts a stored row to a domain generation marker
func ToDomainRecurringGeneration(m models.RecurringGeneration) domain.RecurringGeneration {
	return domain.RecurringGeneration(m)
}

// ToModelOutboxEntry converts a domain OutboxEntry to its stored row
func ToModelOutboxEntry(d domain.OutboxEntry) models.OutboxEntry {
	return models.OutboxEntry(d)
}

// ToDomainOutboxEntry converts a stored row to a domain OutboxEntry
func ToDomainOutboxEntry(m models.OutboxEntry) domain.OutboxEntry {
	return domain.OutboxEntry(m)
}
