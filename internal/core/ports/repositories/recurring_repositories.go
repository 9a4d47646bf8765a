package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// RecurringTemplateReader defines read operations for recurring templates
type RecurringTemplateReader interface {
	FindTemplateByID(ctx context.Context, templateID string) (*domain.RecurringJournalTemplate, error)
	FindTemplateByCode(ctx context.Context, templateCode string) (*domain.RecurringJournalTemplate, error)
	ListActiveTemplates(ctx context.Context) ([]domain.RecurringJournalTemplate, error)

	// FindGeneration returns apperrors.ErrNotFound when the template has not
	// produced an entry for targetDate.
	FindGeneration(ctx context.Context, templateID string, targetDate time.Time) (*domain.RecurringGeneration, error)

	// ListGenerationDates returns the target dates generated for the template
	// on or before through, oldest first.
	ListGenerationDates(ctx context.Context, templateID string, through time.Time) ([]time.Time, error)
}

// RecurringTemplateLocker serializes generations of the same template.
type RecurringTemplateLocker interface {
	FindTemplateByIDForUpdate(ctx context.Context, templateID string) (*domain.RecurringJournalTemplate, error)
}

// RecurringTemplateWriter defines write operations for recurring templates
type RecurringTemplateWriter interface {
	// SaveTemplate inserts when expectedVersion is zero, otherwise updates
	// guarded by the version. Duplicate codes yield apperrors.ErrDuplicate and
	// stale versions apperrors.ErrConflict.
	SaveTemplate(ctx context.Context, template domain.RecurringJournalTemplate, expectedVersion int) error

	// InsertGeneration yields apperrors.ErrDuplicate when the
	// (template, date) pair already exists.
	InsertGeneration(ctx context.Context, generation domain.RecurringGeneration) error
}

// RecurringTemplateRepository combines all recurring template interfaces
type RecurringTemplateRepository interface {
	RecurringTemplateReader
	RecurringTemplateLocker
	RecurringTemplateWriter
}
