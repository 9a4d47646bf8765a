package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_ledger/internal/models"
	"github.com/SscSPs/erp_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const journalColumns = `journal_entry_id, posting_date, reference_number, source_tag, description,
	posting_batch_id, accounting_period_id, reversal_of_id, status, version, posted_by, posted_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	q Querier
}

func newPgxJournalRepository(q Querier) *PgxJournalRepository {
	return &PgxJournalRepository{q: q}
}

// Ensure PgxJournalRepository implements portsrepo.JournalEntryRepository
var _ portsrepo.JournalEntryRepository = (*PgxJournalRepository)(nil)

func scanJournal(row rowScanner) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.JournalEntryID,
		&m.PostingDate,
		&m.ReferenceNumber,
		&m.SourceTag,
		&m.Description,
		&m.PostingBatchID,
		&m.AccountingPeriodID,
		&m.ReversalOfID,
		&m.Status,
		&m.Version,
		&m.PostedBy,
		&m.PostedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxJournalRepository) findJournal(ctx context.Context, journalEntryID string, forUpdate bool) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE journal_entry_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	header, err := scanJournal(r.q.QueryRow(ctx, query, journalEntryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, journalEntryID)
		}
		return nil, dbError("failed to find journal entry "+journalEntryID, err)
	}
	lines, err := r.findLines(ctx, journalEntryID)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainJournalEntry(header, lines), nil
}

// FindJournalEntryByID retrieves a journal entry and its lines.
func (r *PgxJournalRepository) FindJournalEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	return r.findJournal(ctx, journalEntryID, false)
}

// FindJournalEntryByIDForUpdate locks the header row until the transaction ends.
func (r *PgxJournalRepository) FindJournalEntryByIDForUpdate(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	return r.findJournal(ctx, journalEntryID, true)
}

func (r *PgxJournalRepository) findLines(ctx context.Context, journalEntryID string) ([]models.JournalEntryLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT line_id, journal_entry_id, line_number, account_id, debit, credit, memo
		FROM journal_entry_lines
		WHERE journal_entry_id = $1
		ORDER BY line_number;
	`, journalEntryID)
	if err != nil {
		return nil, dbError("failed to query lines of journal entry "+journalEntryID, err)
	}
	defer rows.Close()

	var lines []models.JournalEntryLine
	for rows.Next() {
		var l models.JournalEntryLine
		if err := rows.Scan(&l.LineID, &l.JournalEntryID, &l.LineNumber, &l.AccountID, &l.Debit, &l.Credit, &l.Memo); err != nil {
			return nil, dbError("failed to scan journal entry line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating journal entry lines", err)
	}
	return lines, nil
}

// FindLinesByJournalEntryID returns apperrors.ErrNotFound when the entry does not exist.
func (r *PgxJournalRepository) FindLinesByJournalEntryID(ctx context.Context, journalEntryID string) ([]domain.JournalEntryLine, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entries WHERE journal_entry_id = $1)`, journalEntryID).Scan(&exists); err != nil {
		return nil, dbError("failed to check journal entry "+journalEntryID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, journalEntryID)
	}
	lines, err := r.findLines(ctx, journalEntryID)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainJournalEntryLines(lines), nil
}

// InsertJournalEntry stores the header and queues every line in one batch.
func (r *PgxJournalRepository) InsertJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	header, lines := mapping.ToModelJournalEntry(entry)
	_, err := r.q.Exec(ctx, `
		INSERT INTO journal_entries (`+journalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`,
		header.JournalEntryID,
		header.PostingDate,
		header.ReferenceNumber,
		header.SourceTag,
		header.Description,
		header.PostingBatchID,
		header.AccountingPeriodID,
		header.ReversalOfID,
		header.Status,
		header.Version,
		header.PostedBy,
		header.PostedAt,
		header.CreatedAt,
		header.CreatedBy,
		header.LastUpdatedAt,
		header.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, header.JournalEntryID)
		}
		return dbError("failed to insert journal entry "+header.JournalEntryID, err)
	}
	return r.insertLines(ctx, header.JournalEntryID, lines)
}

func (r *PgxJournalRepository) insertLines(ctx context.Context, journalEntryID string, lines []models.JournalEntryLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(`
			INSERT INTO journal_entry_lines (line_id, journal_entry_id, line_number, account_id, debit, credit, memo)
			VALUES ($1, $2, $3, $4, $5, $6, $7);
		`, l.LineID, l.JournalEntryID, l.LineNumber, l.AccountID, l.Debit, l.Credit, l.Memo)
	}
	// Important: Close the batch results to check for errors in each command
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return dbError("failed to insert lines of journal entry "+journalEntryID, err)
	}
	return nil
}

// versionMismatch distinguishes a missing entry from a stale or posted one
// after a guarded update touched no rows.
func (r *PgxJournalRepository) versionMismatch(ctx context.Context, journalEntryID string, expectedVersion int) error {
	var (
		version int
		status  string
	)
	err := r.q.QueryRow(ctx, `SELECT version, status FROM journal_entries WHERE journal_entry_id = $1`, journalEntryID).Scan(&version, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, journalEntryID)
	}
	if err != nil {
		return dbError("failed to read version of journal entry "+journalEntryID, err)
	}
	if status == string(domain.Posted) {
		return fmt.Errorf("%w: journal entry %s is already posted", apperrors.ErrConflict, journalEntryID)
	}
	return fmt.Errorf("%w: journal entry %s is at version %d, expected %d", apperrors.ErrConflict, journalEntryID, version, expectedVersion)
}

// UpdateDraftJournalEntry rewrites the header and replaces all lines.
func (r *PgxJournalRepository) UpdateDraftJournalEntry(ctx context.Context, entry *domain.JournalEntry, expectedVersion int) error {
	header, lines := mapping.ToModelJournalEntry(entry)
	tag, err := r.q.Exec(ctx, `
		UPDATE journal_entries
		SET posting_date = $2, reference_number = $3, source_tag = $4, description = $5,
		    posting_batch_id = $6, accounting_period_id = $7, version = $8,
		    last_updated_at = $9, last_updated_by = $10
		WHERE journal_entry_id = $1 AND version = $11 AND status = 'DRAFT';
	`,
		header.JournalEntryID,
		header.PostingDate,
		header.ReferenceNumber,
		header.SourceTag,
		header.Description,
		header.PostingBatchID,
		header.AccountingPeriodID,
		header.Version,
		header.LastUpdatedAt,
		header.LastUpdatedBy,
		expectedVersion,
	)
	if err != nil {
		return dbError("failed to update journal entry "+header.JournalEntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.versionMismatch(ctx, header.JournalEntryID, expectedVersion)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM journal_entry_lines WHERE journal_entry_id = $1`, header.JournalEntryID); err != nil {
		return dbError("failed to clear lines of journal entry "+header.JournalEntryID, err)
	}
	return r.insertLines(ctx, header.JournalEntryID, lines)
}

// MarkJournalEntryPosted flips the status; lines are left untouched.
func (r *PgxJournalRepository) MarkJournalEntryPosted(ctx context.Context, entry *domain.JournalEntry, expectedVersion int) error {
	header, _ := mapping.ToModelJournalEntry(entry)
	tag, err := r.q.Exec(ctx, `
		UPDATE journal_entries
		SET status = $2, version = $3, posted_by = $4, posted_at = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE journal_entry_id = $1 AND version = $8 AND status = 'DRAFT';
	`,
		header.JournalEntryID,
		header.Status,
		header.Version,
		header.PostedBy,
		header.PostedAt,
		header.LastUpdatedAt,
		header.LastUpdatedBy,
		expectedVersion,
	)
	if err != nil {
		return dbError("failed to mark journal entry "+header.JournalEntryID+" posted", err)
	}
	if tag.RowsAffected() == 0 {
		return r.versionMismatch(ctx, header.JournalEntryID, expectedVersion)
	}
	return nil
}
