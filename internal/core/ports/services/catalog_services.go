package services

import (
	"context"

	"github.com/SscSPs/erp_ledger/internal/dto"
)

// CatalogSvc loads reference data: accounts and recurring templates.
type CatalogSvc interface {
	// SyncDefinitions upserts accounts by id and templates by code.
	SyncDefinitions(ctx context.Context, defs dto.LedgerDefinitions, actor string) (*dto.SyncResult, error)
}
