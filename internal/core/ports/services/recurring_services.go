package services

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/dto"
)

// RecurringGeneratorSvc creates draft entries from recurring templates.
type RecurringGeneratorSvc interface {
	// GenerateFromTemplate creates at most one draft per template and calendar date.
	GenerateFromTemplate(ctx context.Context, req dto.GenerateFromTemplateRequest) (*dto.GenerationResult, error)
}

// RecurringSchedulerSvc catches active templates up to a date.
type RecurringSchedulerSvc interface {
	// GenerateDue generates every due date up to asOf. Failures of one
	// template do not stop the others; they are combined into the error.
	GenerateDue(ctx context.Context, asOf time.Time, actor string) ([]dto.GenerationResult, error)
}

// RecurringSvcFacade combines the recurring services
type RecurringSvcFacade interface {
	RecurringGeneratorSvc
	RecurringSchedulerSvc
}
