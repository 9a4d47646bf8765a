package mapping

import (
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/models"
)

// ToModelJournalEntry splits a domain JournalEntry into its header and line rows
func ToModelJournalEntry(d *domain.JournalEntry) (models.JournalEntry, []models.JournalEntryLine) {
	s := d.Snapshot()
	header := models.JournalEntry{
		JournalEntryID:     s.JournalEntryID,
		PostingDate:        s.PostingDate,
		ReferenceNumber:    s.ReferenceNumber,
		SourceTag:          s.SourceTag,
		Description:        s.Description,
		PostingBatchID:     s.PostingBatchID,
		AccountingPeriodID: s.AccountingPeriodID,
		ReversalOfID:       s.ReversalOfID,
		Status:             string(s.Status),
		Version:            s.Version,
		PostedBy:           optionalString(s.PostedBy),
		PostedAt:           s.PostedAt,
		AuditFields:        ToModelAuditFields(s.AuditFields),
	}
	lines := make([]models.JournalEntryLine, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = ToModelJournalEntryLine(l)
	}
	return header, lines
}

// ToDomainJournalEntry rebuilds the aggregate from its stored rows
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalEntryLine) *domain.JournalEntry {
	return domain.RestoreJournalEntry(domain.JournalEntrySnapshot{
		JournalEntryID:     m.JournalEntryID,
		PostingDate:        m.PostingDate,
		ReferenceNumber:    m.ReferenceNumber,
		SourceTag:          m.SourceTag,
		Description:        m.Description,
		PostingBatchID:     m.PostingBatchID,
		AccountingPeriodID: m.AccountingPeriodID,
		ReversalOfID:       m.ReversalOfID,
		Status:             domain.JournalEntryStatus(m.Status),
		Version:            m.Version,
		PostedBy:           derefString(m.PostedBy),
		PostedAt:           m.PostedAt,
		Lines:              ToDomainJournalEntryLines(lines),
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	})
}

// ToModelJournalEntryLine converts a domain JournalEntryLine to a model JournalEntryLine
func ToModelJournalEntryLine(d domain.JournalEntryLine) models.JournalEntryLine {
	return models.JournalEntryLine{
		LineID:         d.LineID,
		JournalEntryID: d.JournalEntryID,
		LineNumber:     d.LineNumber,
		AccountID:      d.AccountID,
		Debit:          d.Debit,
		Credit:         d.Credit,
		Memo:           d.Memo,
	}
}

// ToDomainJournalEntryLines converts model lines to domain lines
func ToDomainJournalEntryLines(ms []models.JournalEntryLine) []domain.JournalEntryLine {
	ds := make([]domain.JournalEntryLine, len(ms))
	for i, m := range ms {
		ds[i] = domain.JournalEntryLine{
			LineID:         m.LineID,
			JournalEntryID: m.JournalEntryID,
			LineNumber:     m.LineNumber,
			AccountID:      m.AccountID,
			Debit:          m.Debit,
			Credit:         m.Credit,
			Memo:           m.Memo,
		}
	}
	return ds
}

// ToModelLedgerEntry converts a domain GeneralLedgerEntry to its stored row
func ToModelLedgerEntry(d domain.GeneralLedgerEntry) models.GeneralLedgerEntry {
	return models.GeneralLedgerEntry{
		LedgerEntryID:   d.LedgerEntryID,
		JournalEntryID:  d.JournalEntryID,
		JournalLineID:   d.JournalLineID,
		AccountID:       d.AccountID,
		AccountCode:     d.AccountCode,
		Classification:  string(d.Classification),
		Debit:           d.Debit,
		Credit:          d.Credit,
		TransactionDate: d.TransactionDate,
		ReferenceNumber: d.ReferenceNumber,
		Memo:            d.Memo,
		PostedBy:        optionalString(d.PostedBy),
		PostedAt:        d.PostedAt,
		CreatedAt:       d.CreatedAt,
	}
}

// ToDomainLedgerEntry converts a stored ledger row to a domain GeneralLedgerEntry
func ToDomainLedgerEntry(m models.GeneralLedgerEntry) domain.GeneralLedgerEntry {
	return domain.GeneralLedgerEntry{
		LedgerEntryID:   m.LedgerEntryID,
		JournalEntryID:  m.JournalEntryID,
		JournalLineID:   m.JournalLineID,
		AccountID:       m.AccountID,
		AccountCode:     m.AccountCode,
		Classification:  domain.AccountType(m.Classification),
		Debit:           m.Debit,
		Credit:          m.Credit,
		TransactionDate: m.TransactionDate,
		ReferenceNumber: m.ReferenceNumber,
		Memo:            m.Memo,
		PostedBy:        derefString(m.PostedBy),
		PostedAt:        m.PostedAt,
		CreatedAt:       m.CreatedAt,
	}
}
