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
	"github.com/SscSPs/erp_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrJournalEntryNotFound   = fmt.Errorf("journal entry %w", apperrors.ErrNotFound)
	ErrJournalEntryNoLines    = fmt.Errorf("%w: journal entry has no lines", apperrors.ErrValidation)
	ErrAccountNotFound        = fmt.Errorf("account %w", apperrors.ErrNotFound)
	ErrConcurrentModification = fmt.Errorf("journal entry was modified concurrently: %w", apperrors.ErrConflict)
)

// UnbalancedError reports the totals of a journal entry whose debits and
// credits differ.
type UnbalancedError struct {
	JournalEntryID  string
	ReferenceNumber string
	TotalDebit      decimal.Decimal
	TotalCredit     decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("%s: journal entry %s (reference %s) debits sum is %s and credits sum is %s",
		apperrors.ErrUnbalanced, e.JournalEntryID, e.ReferenceNumber, e.TotalDebit, e.TotalCredit)
}

func (e *UnbalancedError) Is(target error) bool {
	return target == apperrors.ErrUnbalanced
}

// postingService implements the PostingSvc interface
type postingService struct {
	BaseService
	uow      portsrepo.UnitOfWork
	accounts portsrepo.AccountReader
	serviceOptions
}

// NewPostingService creates the posting engine. accounts may be nil, in which
// case every account is treated as unknown.
func NewPostingService(uow portsrepo.UnitOfWork, accounts portsrepo.AccountReader, opts ...ServiceOption) portssvc.PostingSvc {
	return &postingService{
		uow:            uow,
		accounts:       accounts,
		serviceOptions: newServiceOptions(opts),
	}
}

var _ portssvc.PostingSvc = (*postingService)(nil)

// accountInfo is the denormalized account data copied onto ledger rows.
type accountInfo struct {
	code           string
	classification domain.AccountType
}

func (s *postingService) PostJournalEntry(ctx context.Context, req dto.PostJournalEntryRequest) (id string, err error) {
	ctx, span := tracer.Start(ctx, "PostingService.PostJournalEntry",
		trace.WithAttributes(attribute.String("journal_entry_id", req.JournalEntryID)))
	started := s.clock.Now()
	appended := 0
	defer func() {
		result := "success"
		if err != nil {
			result = string(apperrors.KindOf(err))
		}
		s.metrics.PostingCompleted(result, appended, s.clock.Now().Sub(started))
		endSpan(span, err)
	}()

	if req.JournalEntryID == "" {
		return "", fmt.Errorf("%w: journal entry id is required", apperrors.ErrValidation)
	}
	if req.PostingDate.IsZero() {
		return "", fmt.Errorf("%w: posting date is required", apperrors.ErrValidation)
	}

	validate := s.policy.ValidateBalances
	if req.ValidateBalances != nil {
		validate = *req.ValidateBalances
	}
	actor := domain.ResolveActor(req.Actor, s.policy.DefaultActor)

	var reference string
	err = s.uow.Do(ctx, func(ctx context.Context, stores portsrepo.Stores) error {
		entry, err := stores.Journals.FindJournalEntryByIDForUpdate(ctx, req.JournalEntryID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrJournalEntryNotFound, req.JournalEntryID)
			}
			return err
		}
		if entry.IsPosted() {
			return fmt.Errorf("%w: %s", domain.ErrJournalEntryAlreadyPosted, entry.ID())
		}

		lines := entry.Lines()
		if err := s.checkLines(entry, lines, validate); err != nil {
			return err
		}

		accounts, err := s.resolveAccounts(ctx, lines)
		if err != nil {
			return err
		}

		reference = entry.ReferenceNumber()
		if req.PostingReference != nil && *req.PostingReference != "" {
			reference = *req.PostingReference
		}

		now := s.clock.Now().UTC()
		ledger := make([]domain.GeneralLedgerEntry, 0, len(lines))
		for _, line := range lines {
			info := accounts[line.AccountID]
			ledger = append(ledger, domain.NewGeneralLedgerEntry(domain.LedgerEntryParams{
				JournalEntryID:  entry.ID(),
				Line:            line,
				AccountCode:     info.code,
				Classification:  info.classification,
				TransactionDate: req.PostingDate,
				ReferenceNumber: reference,
				CreatedAt:       now,
			}))
		}
		for i := range ledger {
			if err := ledger[i].MarkPosted(actor, now); err != nil {
				return err
			}
		}

		expectedVersion := entry.Version()
		if err := entry.MarkPosted(actor, now); err != nil {
			return err
		}

		if err := stores.Ledger.AppendLedgerEntries(ctx, ledger); err != nil {
			return err
		}
		if err := stores.Journals.MarkJournalEntryPosted(ctx, entry, expectedVersion); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return fmt.Errorf("%w: %s", ErrConcurrentModification, entry.ID())
			}
			return err
		}

		event, err := domain.NewJournalEntryPostedEvent(entry, ledger, reference, now)
		if err != nil {
			return err
		}
		if err := stores.Outbox.StoreOutboxEntries(ctx, []domain.OutboxEntry{event}); err != nil {
			return err
		}

		appended = len(ledger)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to post journal entry",
			slog.String("journal_entry_id", req.JournalEntryID),
			slog.String("kind", string(apperrors.KindOf(err))),
			slog.String("actor", actor))
		return "", err
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("journal_entry_id", req.JournalEntryID),
		slog.String("reference", reference),
		slog.String("actor", actor),
		slog.Int("ledger_entries", appended))
	return req.JournalEntryID, nil
}

// checkLines applies the no-lines, balance and exclusivity rules.
func (s *postingService) checkLines(entry *domain.JournalEntry, lines []domain.JournalEntryLine, validate bool) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: %s", ErrJournalEntryNoLines, entry.ID())
	}
	if validate {
		result := accounting.ValidateBalance(lines)
		if !result.Balanced {
			return &UnbalancedError{
				JournalEntryID:  entry.ID(),
				ReferenceNumber: entry.ReferenceNumber(),
				TotalDebit:      result.TotalDebit,
				TotalCredit:     result.TotalCredit,
			}
		}
	}
	if s.policy.EnforceLineExclusivity {
		if err := accounting.ValidateLineExclusivity(lines); err != nil {
			return err
		}
	}
	return nil
}

// resolveAccounts looks each distinct account up once.
func (s *postingService) resolveAccounts(ctx context.Context, lines []domain.JournalEntryLine) (map[string]accountInfo, error) {
	out := make(map[string]accountInfo, len(lines))
	for _, line := range lines {
		if _, seen := out[line.AccountID]; seen {
			continue
		}
		info, err := s.resolveAccount(ctx, line.AccountID)
		if err != nil {
			return nil, err
		}
		out[line.AccountID] = info
	}
	return out, nil
}

func (s *postingService) resolveAccount(ctx context.Context, accountID string) (accountInfo, error) {
	var (
		account *domain.Account
		err     = fmt.Errorf("%w: no account resolver configured", apperrors.ErrNotFound)
	)
	if s.accounts != nil {
		account, err = s.accounts.FindAccountByID(ctx, accountID)
	}
	if err == nil {
		return accountInfo{code: account.Code, classification: account.AccountType}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return accountInfo{}, ctxErr
	}

	if s.policy.MissingAccounts == domain.MissingAccountStrict {
		if errors.Is(err, apperrors.ErrNotFound) {
			return accountInfo{}, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		return accountInfo{}, err
	}

	s.LogWarn(ctx, "Account metadata unavailable, posting with raw account id",
		slog.String("account_id", accountID),
		slog.String("error", err.Error()))
	return accountInfo{code: accountID, classification: domain.Unclassified}, nil
}
