package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

var (
	ErrRecurringTemplateNotFound = fmt.Errorf("recurring template %w", apperrors.ErrNotFound)
	ErrRecurringTemplateInactive = fmt.Errorf("%w: recurring template is inactive", apperrors.ErrValidation)
	ErrRecurringAlreadyGenerated = fmt.Errorf("recurring template already generated for this date: %w", apperrors.ErrConflict)
)

// recurringService implements the RecurringSvcFacade interface
type recurringService struct {
	BaseService
	uow       portsrepo.UnitOfWork
	templates portsrepo.RecurringTemplateReader
	serviceOptions
}

// NewRecurringService creates the recurring template generator.
func NewRecurringService(uow portsrepo.UnitOfWork, templates portsrepo.RecurringTemplateReader, opts ...ServiceOption) portssvc.RecurringSvcFacade {
	return &recurringService{
		uow:            uow,
		templates:      templates,
		serviceOptions: newServiceOptions(opts),
	}
}

var _ portssvc.RecurringSvcFacade = (*recurringService)(nil)

// errGenerationRaced rolls back a generation that lost the unique
// (template, date) insert to a concurrent writer.
var errGenerationRaced = errors.New("recurring generation raced")

func (s *recurringService) GenerateFromTemplate(ctx context.Context, req dto.GenerateFromTemplateRequest) (*dto.GenerationResult, error) {
	return s.generate(ctx, req, s.policy.DuplicateGenerations)
}

// generate creates the entry for one (template, date) pair. Under
// DuplicateIdempotent an existing generation is returned with
// AlreadyGenerated set, including one written concurrently.
func (s *recurringService) generate(ctx context.Context, req dto.GenerateFromTemplateRequest, duplicates domain.DuplicateGenerationPolicy) (res *dto.GenerationResult, err error) {
	ctx, span := tracer.Start(ctx, "RecurringService.GenerateFromTemplate",
		trace.WithAttributes(attribute.String("template_id", req.TemplateID)))
	defer func() {
		result := "success"
		switch {
		case err != nil:
			result = string(apperrors.KindOf(err))
		case res != nil && res.AlreadyGenerated:
			result = "already_generated"
		}
		s.metrics.GenerationCompleted(result)
		endSpan(span, err)
	}()

	if req.TemplateID == "" {
		return nil, fmt.Errorf("%w: template id is required", apperrors.ErrValidation)
	}
	target := s.clock.Now()
	if req.GenerateForDate != nil {
		target = *req.GenerateForDate
	}
	target = domain.CalendarDay(target)
	actor := domain.ResolveActor(req.Actor, s.policy.DefaultActor)

	var result dto.GenerationResult
	err = s.uow.Do(ctx, func(ctx context.Context, stores portsrepo.Stores) error {
		tpl, err := stores.Templates.FindTemplateByIDForUpdate(ctx, req.TemplateID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrRecurringTemplateNotFound, req.TemplateID)
			}
			return err
		}

		reference := tpl.GenerationReference(target)
		result = dto.GenerationResult{
			TemplateID:      tpl.TemplateID,
			TemplateCode:    tpl.TemplateCode,
			TargetDate:      target,
			ReferenceNumber: reference,
		}

		existing, err := stores.Templates.FindGeneration(ctx, tpl.TemplateID, target)
		switch {
		case err == nil:
			if duplicates == domain.DuplicateReject {
				return alreadyGenerated(tpl.TemplateCode, target)
			}
			result.JournalEntryID = existing.JournalEntryID
			result.AlreadyGenerated = true
			return nil
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		// an inactive template still answers for dates it already generated
		if !tpl.IsActive {
			return fmt.Errorf("%w: %s", ErrRecurringTemplateInactive, tpl.TemplateCode)
		}

		now := s.clock.Now().UTC()
		entry, err := domain.NewDraftFromTemplate(*tpl, target, actor, now)
		if err != nil {
			return err
		}
		if err := stores.Journals.InsertJournalEntry(ctx, entry); err != nil {
			return err
		}

		generation := domain.RecurringGeneration{
			TemplateID:     tpl.TemplateID,
			TargetDate:     target,
			JournalEntryID: entry.ID(),
			GeneratedBy:    actor,
			GeneratedAt:    now,
		}
		if err := stores.Templates.InsertGeneration(ctx, generation); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return errGenerationRaced
			}
			return err
		}

		expectedVersion := tpl.Version
		tpl.RecordGeneration(target, entry.ID(), actor, now)
		if err := stores.Templates.SaveTemplate(ctx, *tpl, expectedVersion); err != nil {
			return err
		}

		event, err := domain.NewRecurringGeneratedEvent(*tpl, generation, reference)
		if err != nil {
			return err
		}
		if err := stores.Outbox.StoreOutboxEntries(ctx, []domain.OutboxEntry{event}); err != nil {
			return err
		}

		result.JournalEntryID = entry.ID()
		return nil
	})
	if errors.Is(err, errGenerationRaced) {
		err = s.resolveRaced(ctx, &result, duplicates)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to generate recurring journal entry",
			slog.String("template_id", req.TemplateID),
			slog.Time("target_date", target),
			slog.String("kind", string(apperrors.KindOf(err))))
		return nil, err
	}

	if result.AlreadyGenerated {
		s.LogInfo(ctx, "Recurring journal entry already generated",
			slog.String("template_code", result.TemplateCode),
			slog.String("journal_entry_id", result.JournalEntryID),
			slog.String("reference", result.ReferenceNumber))
	} else {
		s.LogInfo(ctx, "Recurring journal entry generated",
			slog.String("template_code", result.TemplateCode),
			slog.String("journal_entry_id", result.JournalEntryID),
			slog.String("reference", result.ReferenceNumber),
			slog.String("actor", actor))
	}
	return &result, nil
}

// resolveRaced reads back the generation that won the insert after the
// losing unit of work rolled back.
func (s *recurringService) resolveRaced(ctx context.Context, result *dto.GenerationResult, duplicates domain.DuplicateGenerationPolicy) error {
	if duplicates == domain.DuplicateReject {
		return alreadyGenerated(result.TemplateCode, result.TargetDate)
	}
	existing, err := s.templates.FindGeneration(ctx, result.TemplateID, result.TargetDate)
	if err != nil {
		return err
	}
	result.JournalEntryID = existing.JournalEntryID
	result.AlreadyGenerated = true
	return nil
}

func alreadyGenerated(code string, target time.Time) error {
	return fmt.Errorf("%w: %s on %s", ErrRecurringAlreadyGenerated, code, target.Format(dto.DateLayout))
}

func (s *recurringService) GenerateDue(ctx context.Context, asOf time.Time, actor string) ([]dto.GenerationResult, error) {
	templates, err := s.templates.ListActiveTemplates(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list active recurring templates")
		return nil, err
	}

	var (
		results []dto.GenerationResult
		errs    error
	)
	for _, tpl := range templates {
		generated, err := s.templates.ListGenerationDates(ctx, tpl.TemplateID, asOf)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("template %s: %w", tpl.TemplateCode, err))
			continue
		}
		for _, date := range tpl.DueDates(asOf, generated) {
			if err := ctx.Err(); err != nil {
				return results, multierr.Append(errs, err)
			}
			date := date
			// dates generated since the listing are skipped, not rejected
			res, err := s.generate(ctx, dto.GenerateFromTemplateRequest{
				TemplateID:      tpl.TemplateID,
				GenerateForDate: &date,
				Actor:           actor,
			}, domain.DuplicateIdempotent)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("template %s on %s: %w", tpl.TemplateCode, date.Format(dto.DateLayout), err))
				break
			}
			if res.AlreadyGenerated {
				continue
			}
			results = append(results, *res)
		}
	}

	s.LogInfo(ctx, "Recurring generation run finished",
		slog.Time("as_of", domain.CalendarDay(asOf)),
		slog.Int("generated", len(results)),
		slog.Int("failed", len(multierr.Errors(errs))))
	return results, errs
}
