package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_ledger/internal/models"
	"github.com/SscSPs/erp_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const templateColumns = `template_id, template_code, description, debit_account_id, credit_account_id, amount,
	posting_batch_id, source_tag, frequency, start_date, is_active, last_generated_for,
	last_generated_journal_entry_id, version, created_at, created_by, last_updated_at, last_updated_by`

type PgxRecurringRepository struct {
	q Querier
}

func newPgxRecurringRepository(q Querier) *PgxRecurringRepository {
	return &PgxRecurringRepository{q: q}
}

var _ portsrepo.RecurringTemplateRepository = (*PgxRecurringRepository)(nil)

func scanTemplate(row rowScanner) (domain.RecurringJournalTemplate, error) {
	var m models.RecurringJournalTemplate
	err := row.Scan(
		&m.TemplateID,
		&m.TemplateCode,
		&m.Description,
		&m.DebitAccountID,
		&m.CreditAccountID,
		&m.Amount,
		&m.PostingBatchID,
		&m.SourceTag,
		&m.Frequency,
		&m.StartDate,
		&m.IsActive,
		&m.LastGeneratedFor,
		&m.LastGeneratedJournalEntryID,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return mapping.ToDomainRecurringTemplate(m), err
}

func (r *PgxRecurringRepository) findOne(ctx context.Context, what, query string, arg any) (*domain.RecurringJournalTemplate, error) {
	t, err := scanTemplate(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: recurring template %s %v", apperrors.ErrNotFound, what, arg)
		}
		return nil, dbError(fmt.Sprintf("failed to find recurring template %s %v", what, arg), err)
	}
	return &t, nil
}

func (r *PgxRecurringRepository) FindTemplateByID(ctx context.Context, templateID string) (*domain.RecurringJournalTemplate, error) {
	return r.findOne(ctx, "id", `SELECT `+templateColumns+` FROM recurring_journal_templates WHERE template_id = $1`, templateID)
}

// FindTemplateByIDForUpdate serializes generations of one template.
func (r *PgxRecurringRepository) FindTemplateByIDForUpdate(ctx context.Context, templateID string) (*domain.RecurringJournalTemplate, error) {
	return r.findOne(ctx, "id", `SELECT `+templateColumns+` FROM recurring_journal_templates WHERE template_id = $1 FOR UPDATE`, templateID)
}

func (r *PgxRecurringRepository) FindTemplateByCode(ctx context.Context, templateCode string) (*domain.RecurringJournalTemplate, error) {
	return r.findOne(ctx, "code", `SELECT `+templateColumns+` FROM recurring_journal_templates WHERE template_code = $1`, templateCode)
}

func (r *PgxRecurringRepository) ListActiveTemplates(ctx context.Context) ([]domain.RecurringJournalTemplate, error) {
	rows, err := r.q.Query(ctx, `SELECT `+templateColumns+` FROM recurring_journal_templates WHERE is_active ORDER BY template_code`)
	if err != nil {
		return nil, dbError("failed to list recurring templates", err)
	}
	defer rows.Close()

	var out []domain.RecurringJournalTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, dbError("failed to scan recurring template", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating recurring templates", err)
	}
	return out, nil
}

// SaveTemplate inserts when expectedVersion is zero and otherwise performs a
// version-guarded update.
func (r *PgxRecurringRepository) SaveTemplate(ctx context.Context, t domain.RecurringJournalTemplate, expectedVersion int) error {
	m := mapping.ToModelRecurringTemplate(t)
	if expectedVersion == 0 {
		return r.insertTemplate(ctx, m)
	}

	// created_at and created_by are never rewritten
	tag, err := r.q.Exec(ctx, `
		UPDATE recurring_journal_templates
		SET template_code = $2, description = $3, debit_account_id = $4, credit_account_id = $5, amount = $6,
		    posting_batch_id = $7, source_tag = $8, frequency = $9, start_date = $10, is_active = $11,
		    last_generated_for = $12, last_generated_journal_entry_id = $13, version = $14,
		    last_updated_at = $15, last_updated_by = $16
		WHERE template_id = $1 AND version = $17;
	`,
		m.TemplateID,
		m.TemplateCode,
		m.Description,
		m.DebitAccountID,
		m.CreditAccountID,
		m.Amount,
		m.PostingBatchID,
		m.SourceTag,
		m.Frequency,
		m.StartDate,
		m.IsActive,
		m.LastGeneratedFor,
		m.LastGeneratedJournalEntryID,
		m.Version,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		expectedVersion,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: recurring template code %s", apperrors.ErrDuplicate, t.TemplateCode)
		}
		return dbError("failed to update recurring template "+t.TemplateCode, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var version int
	err = r.q.QueryRow(ctx, `SELECT version FROM recurring_journal_templates WHERE template_id = $1`, t.TemplateID).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: recurring template %s", apperrors.ErrNotFound, t.TemplateID)
	}
	if err != nil {
		return dbError("failed to read version of recurring template "+t.TemplateID, err)
	}
	return fmt.Errorf("%w: recurring template %s is at version %d, expected %d", apperrors.ErrConflict, t.TemplateID, version, expectedVersion)
}

func (r *PgxRecurringRepository) insertTemplate(ctx context.Context, m models.RecurringJournalTemplate) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO recurring_journal_templates (`+templateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`,
		m.TemplateID,
		m.TemplateCode,
		m.Description,
		m.DebitAccountID,
		m.CreditAccountID,
		m.Amount,
		m.PostingBatchID,
		m.SourceTag,
		m.Frequency,
		m.StartDate,
		m.IsActive,
		m.LastGeneratedFor,
		m.LastGeneratedJournalEntryID,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: recurring template %s", apperrors.ErrDuplicate, m.TemplateCode)
		}
		return dbError("failed to insert recurring template "+m.TemplateCode, err)
	}
	return nil
}

func (r *PgxRecurringRepository) FindGeneration(ctx context.Context, templateID string, targetDate time.Time) (*domain.RecurringGeneration, error) {
	day := domain.CalendarDay(targetDate)
	var m models.RecurringGeneration
	err := r.q.QueryRow(ctx, `
		SELECT template_id, target_date, journal_entry_id, generated_by, generated_at
		FROM recurring_generations
		WHERE template_id = $1 AND target_date = $2;
	`, templateID, day).Scan(&m.TemplateID, &m.TargetDate, &m.JournalEntryID, &m.GeneratedBy, &m.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: generation of %s for %s", apperrors.ErrNotFound, templateID, day.Format("2006-01-02"))
		}
		return nil, dbError("failed to find recurring generation", err)
	}
	g := mapping.ToDomainRecurringGeneration(m)
	return &g, nil
}

func (r *PgxRecurringRepository) ListGenerationDates(ctx context.Context, templateID string, through time.Time) ([]time.Time, error) {
	rows, err := r.q.Query(ctx, `
		SELECT target_date
		FROM recurring_generations
		WHERE template_id = $1 AND target_date <= $2
		ORDER BY target_date;
	`, templateID, domain.CalendarDay(through))
	if err != nil {
		return nil, dbError("failed to list recurring generations", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, dbError("failed to scan recurring generation", err)
		}
		out = append(out, domain.CalendarDay(day))
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("failed to list recurring generations", err)
	}
	return out, nil
}

func (r *PgxRecurringRepository) InsertGeneration(ctx context.Context, g domain.RecurringGeneration) error {
	m := mapping.ToModelRecurringGeneration(g)
	m.TargetDate = domain.CalendarDay(m.TargetDate)
	_, err := r.q.Exec(ctx, `
		INSERT INTO recurring_generations (template_id, target_date, journal_entry_id, generated_by, generated_at)
		VALUES ($1, $2, $3, $4, $5);
	`, m.TemplateID, m.TargetDate, m.JournalEntryID, m.GeneratedBy, m.GeneratedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: generation of %s for %s", apperrors.ErrDuplicate, g.TemplateID, m.TargetDate.Format("2006-01-02"))
		}
		return dbError("failed to insert recurring generation", err)
	}
	return nil
}
