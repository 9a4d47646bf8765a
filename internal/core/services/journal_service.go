package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/SscSPs/erp_ledger/internal/middleware"
)

// journalService provides the draft side of journal entries.
type journalService struct {
	uow         portsrepo.UnitOfWork
	journalRepo portsrepo.JournalEntryReader
	ledgerRepo  portsrepo.LedgerReader
	serviceOptions
}

// NewJournalService creates a new JournalService.
func NewJournalService(uow portsrepo.UnitOfWork, journalRepo portsrepo.JournalEntryReader, ledgerRepo portsrepo.LedgerReader, opts ...ServiceOption) portssvc.JournalSvcFacade {
	return &journalService{
		uow:            uow,
		journalRepo:    journalRepo,
		ledgerRepo:     ledgerRepo,
		serviceOptions: newServiceOptions(opts),
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildLines validates line requests and turns them into domain lines.
func (s *journalService) buildLines(reqs []dto.JournalLineRequest) ([]domain.JournalEntryLine, error) {
	lines := make([]domain.JournalEntryLine, 0, len(reqs))
	for i, r := range reqs {
		line, err := domain.NewJournalEntryLine(r.AccountID, r.Debit, r.Credit, r.Memo)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if s.policy.EnforceLineExclusivity {
			if err := line.ValidateExclusive(); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *journalService) CreateDraftJournalEntry(ctx context.Context, req dto.CreateDraftJournalEntryRequest) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	actor := domain.ResolveActor(req.Actor, s.policy.DefaultActor)

	lines, err := s.buildLines(req.Lines)
	if err != nil {
		return nil, err
	}

	entry, err := domain.NewJournalEntry(domain.NewJournalEntryParams{
		PostingDate:        req.PostingDate,
		ReferenceNumber:    req.ReferenceNumber,
		SourceTag:          req.SourceTag,
		Description:        req.Description,
		PostingBatchID:     req.PostingBatchID,
		AccountingPeriodID: req.AccountingPeriodID,
		CreatedBy:          actor,
		CreatedAt:          s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if err := entry.AddLine(line); err != nil {
			return nil, err
		}
	}

	err = s.uow.Do(ctx, func(ctx context.Context, stores portsrepo.Stores) error {
		return stores.Journals.InsertJournalEntry(ctx, entry)
	})
	if err != nil {
		logger.Error("Failed to save draft journal entry", slog.String("error", err.Error()), slog.String("reference", req.ReferenceNumber))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	logger.Info("Draft journal entry created",
		slog.String("journal_entry_id", entry.ID()),
		slog.String("reference", entry.ReferenceNumber()),
		slog.Int("lines", entry.LineCount()))
	return entry, nil
}

func (s *journalService) AppendLines(ctx context.Context, req dto.AppendLinesRequest) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	actor := domain.ResolveActor(req.Actor, s.policy.DefaultActor)

	lines, err := s.buildLines(req.Lines)
	if err != nil {
		return nil, err
	}

	var entry *domain.JournalEntry
	err = s.uow.Do(ctx, func(ctx context.Context, stores portsrepo.Stores) error {
		found, err := stores.Journals.FindJournalEntryByIDForUpdate(ctx, req.JournalEntryID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrJournalEntryNotFound, req.JournalEntryID)
			}
			return err
		}
		expectedVersion := found.Version()
		for _, line := range lines {
			if err := found.AddLine(line); err != nil {
				return err
			}
		}
		found.Touch(actor, s.clock.Now())
		if err := stores.Journals.UpdateDraftJournalEntry(ctx, found, expectedVersion); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return fmt.Errorf("%w: %s", ErrConcurrentModification, req.JournalEntryID)
			}
			return err
		}
		entry = found
		return nil
	})
	if err != nil {
		logger.Warn("Failed to append journal entry lines",
			slog.String("journal_entry_id", req.JournalEntryID),
			slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Lines appended to draft journal entry",
		slog.String("journal_entry_id", entry.ID()),
		slog.Int("appended", len(lines)),
		slog.Int("lines", entry.LineCount()))
	return entry, nil
}

func (s *journalService) GetJournalEntry(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindJournalEntryByID(ctx, journalEntryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJournalEntryNotFound, journalEntryID)
		}
		middleware.GetLoggerFromCtx(ctx).Error("Failed to load journal entry",
			slog.String("journal_entry_id", journalEntryID), slog.String("error", err.Error()))
		return nil, err
	}
	return entry, nil
}

func (s *journalService) ListLedgerEntries(ctx context.Context, journalEntryID string) ([]domain.GeneralLedgerEntry, error) {
	if _, err := s.GetJournalEntry(ctx, journalEntryID); err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListLedgerEntriesByJournalEntryID(ctx, journalEntryID)
}

func (s *journalService) CreateReversal(ctx context.Context, req dto.CreateReversalRequest) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	actor := domain.ResolveActor(req.Actor, s.policy.DefaultActor)
	now := s.clock.Now()
	postingDate := now
	if req.PostingDate != nil {
		postingDate = *req.PostingDate
	}

	var reversal *domain.JournalEntry
	err := s.uow.Do(ctx, func(ctx context.Context, stores portsrepo.Stores) error {
		original, err := stores.Journals.FindJournalEntryByID(ctx, req.JournalEntryID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrJournalEntryNotFound, req.JournalEntryID)
			}
			return err
		}
		reversal, err = domain.NewReversal(original, postingDate, actor, now)
		if err != nil {
			return err
		}
		return stores.Journals.InsertJournalEntry(ctx, reversal)
	})
	if err != nil {
		logger.Warn("Failed to create reversal",
			slog.String("journal_entry_id", req.JournalEntryID),
			slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Reversal drafted",
		slog.String("journal_entry_id", reversal.ID()),
		slog.String("reversal_of", req.JournalEntryID),
		slog.String("reference", reversal.ReferenceNumber()))
	return reversal, nil
}
