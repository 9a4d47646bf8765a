package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/google/uuid"
)

// catalogService implements the CatalogSvc interface
type catalogService struct {
	BaseService
	uow      portsrepo.UnitOfWork
	accounts portsrepo.AccountWriter
	serviceOptions
}

// NewCatalogService creates the reference data loader.
func NewCatalogService(uow portsrepo.UnitOfWork, accounts portsrepo.AccountWriter, opts ...ServiceOption) portssvc.CatalogSvc {
	return &catalogService{
		uow:            uow,
		accounts:       accounts,
		serviceOptions: newServiceOptions(opts),
	}
}

var _ portssvc.CatalogSvc = (*catalogService)(nil)

func (s *catalogService) SyncDefinitions(ctx context.Context, defs dto.LedgerDefinitions, actor string) (*dto.SyncResult, error) {
	actor = domain.ResolveActor(actor, s.policy.DefaultActor)
	now := s.clock.Now().UTC()

	accounts := make([]domain.Account, 0, len(defs.Accounts))
	for i, def := range defs.Accounts {
		account, err := accountFromDefinition(def, actor, now)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i+1, err)
		}
		accounts = append(accounts, account)
	}
	templates := make([]domain.RecurringJournalTemplate, 0, len(defs.Templates))
	for i, def := range defs.Templates {
		tpl, err := templateFromDefinition(def)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", i+1, err)
		}
		templates = append(templates, tpl)
	}

	result := &dto.SyncResult{}
	for _, account := range accounts {
		if err := s.accounts.SaveAccount(ctx, account); err != nil {
			s.LogError(ctx, err, "Failed to save account", slog.String("account_id", account.AccountID))
			return result, err
		}
		result.AccountsSaved++
	}

	err := s.uow.Do(ctx, func(ctx context.Context, stores portsrepo.Stores) error {
		created, updated := 0, 0
		for _, def := range templates {
			existing, err := stores.Templates.FindTemplateByCode(ctx, def.TemplateCode)
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				tpl := def
				if tpl.TemplateID == "" {
					tpl.TemplateID = uuid.NewString()
				}
				tpl.Version = 1
				tpl.AuditFields = domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
				if err := stores.Templates.SaveTemplate(ctx, tpl, 0); err != nil {
					return fmt.Errorf("create template %s: %w", tpl.TemplateCode, err)
				}
				created++
			case err != nil:
				return err
			default:
				expectedVersion := existing.Version
				existing.Reconfigure(def, actor, now)
				if err := stores.Templates.SaveTemplate(ctx, *existing, expectedVersion); err != nil {
					return fmt.Errorf("update template %s: %w", existing.TemplateCode, err)
				}
				updated++
			}
		}
		result.TemplatesCreated, result.TemplatesUpdated = created, updated
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to sync recurring templates")
		return result, err
	}

	s.LogInfo(ctx, "Ledger definitions synced",
		slog.Int("accounts", result.AccountsSaved),
		slog.Int("templates_created", result.TemplatesCreated),
		slog.Int("templates_updated", result.TemplatesUpdated))
	return result, nil
}

func accountFromDefinition(def dto.AccountDefinition, actor string, now time.Time) (domain.Account, error) {
	accountType := domain.AccountType(strings.ToUpper(strings.TrimSpace(def.Type)))
	switch {
	case def.ID == "":
		return domain.Account{}, fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	case def.Code == "":
		return domain.Account{}, fmt.Errorf("%w: account %s needs a code", apperrors.ErrValidation, def.ID)
	case !accountType.IsValid():
		return domain.Account{}, fmt.Errorf("%w: account %s has unknown type %q", apperrors.ErrValidation, def.ID, def.Type)
	}
	active := true
	if def.Active != nil {
		active = *def.Active
	}
	return domain.Account{
		AccountID:   def.ID,
		Code:        def.Code,
		Name:        def.Name,
		AccountType: accountType,
		IsActive:    active,
		AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor},
	}, nil
}

func templateFromDefinition(def dto.RecurringTemplateDefinition) (domain.RecurringJournalTemplate, error) {
	amount, err := dto.ParseAmount(def.Amount)
	if err != nil {
		return domain.RecurringJournalTemplate{}, err
	}
	frequency, err := domain.ParseFrequency(def.Frequency)
	if err != nil {
		return domain.RecurringJournalTemplate{}, err
	}
	startDate, err := dto.ParseDate(def.StartDate)
	if err != nil {
		return domain.RecurringJournalTemplate{}, err
	}
	active := true
	if def.Active != nil {
		active = *def.Active
	}
	sourceTag := def.SourceTag
	if sourceTag == "" {
		sourceTag = "RECURRING"
	}
	tpl := domain.RecurringJournalTemplate{
		TemplateID:      def.ID,
		TemplateCode:    def.Code,
		Description:     def.Description,
		DebitAccountID:  def.DebitAccountID,
		CreditAccountID: def.CreditAccountID,
		Amount:          amount,
		PostingBatchID:  def.PostingBatchID,
		SourceTag:       sourceTag,
		Frequency:       frequency,
		StartDate:       startDate,
		IsActive:        active,
	}
	if err := tpl.Validate(); err != nil {
		return domain.RecurringJournalTemplate{}, err
	}
	return tpl, nil
}
