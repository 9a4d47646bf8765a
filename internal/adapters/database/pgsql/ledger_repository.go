package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_ledger/internal/models"
	"github.com/SscSPs/erp_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxLedgerRepository struct {
	q Querier
}

func newPgxLedgerRepository(q Querier) *PgxLedgerRepository {
	return &PgxLedgerRepository{q: q}
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

// AppendLedgerEntries inserts rows only. The table trigger rejects UPDATE and DELETE.
func (r *PgxLedgerRepository) AppendLedgerEntries(ctx context.Context, entries []domain.GeneralLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		m := mapping.ToModelLedgerEntry(e)
		batch.Queue(`
			INSERT INTO general_ledger_entries (
				ledger_entry_id, journal_entry_id, journal_line_id, account_id, account_code, classification,
				debit, credit, transaction_date, reference_number, memo, posted_by, posted_at, created_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
		`,
			m.LedgerEntryID,
			m.JournalEntryID,
			m.JournalLineID,
			m.AccountID,
			m.AccountCode,
			m.Classification,
			m.Debit,
			m.Credit,
			m.TransactionDate,
			m.ReferenceNumber,
			m.Memo,
			m.PostedBy,
			m.PostedAt,
			m.CreatedAt,
		)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ledger entry for journal entry %s", apperrors.ErrDuplicate, entries[0].JournalEntryID)
		}
		return dbError("failed to append ledger entries for journal entry "+entries[0].JournalEntryID, err)
	}
	return nil
}

// ListLedgerEntriesByJournalEntryID returns rows in journal line order.
func (r *PgxLedgerRepository) ListLedgerEntriesByJournalEntryID(ctx context.Context, journalEntryID string) ([]domain.GeneralLedgerEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT g.ledger_entry_id, g.journal_entry_id, g.journal_line_id, g.account_id, g.account_code, g.classification,
		       g.debit, g.credit, g.transaction_date, g.reference_number, g.memo, g.posted_by, g.posted_at, g.created_at
		FROM general_ledger_entries g
		JOIN journal_entry_lines l ON l.line_id = g.journal_line_id
		WHERE g.journal_entry_id = $1
		ORDER BY l.line_number;
	`, journalEntryID)
	if err != nil {
		return nil, dbError("failed to query ledger entries of journal entry "+journalEntryID, err)
	}
	defer rows.Close()

	var out []domain.GeneralLedgerEntry
	for rows.Next() {
		var m models.GeneralLedgerEntry
		if err := rows.Scan(
			&m.LedgerEntryID,
			&m.JournalEntryID,
			&m.JournalLineID,
			&m.AccountID,
			&m.AccountCode,
			&m.Classification,
			&m.Debit,
			&m.Credit,
			&m.TransactionDate,
			&m.ReferenceNumber,
			&m.Memo,
			&m.PostedBy,
			&m.PostedAt,
			&m.CreatedAt,
		); err != nil {
			return nil, dbError("failed to scan ledger entry", err)
		}
		out = append(out, mapping.ToDomainLedgerEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating ledger entries", err)
	}
	return out, nil
}
