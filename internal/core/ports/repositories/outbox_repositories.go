package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// OutboxWriter stores events in the same unit of work as the state change.
type OutboxWriter interface {
	StoreOutboxEntries(ctx context.Context, entries []domain.OutboxEntry) error
}

// OutboxReader feeds the relay.
type OutboxReader interface {
	// FetchUnpublished returns at most batchSize entries, oldest first.
	FetchUnpublished(ctx context.Context, batchSize int) ([]domain.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []string, publishedAt time.Time) error
}

// OutboxRepository combines all outbox interfaces
type OutboxRepository interface {
	OutboxWriter
	OutboxReader
}
