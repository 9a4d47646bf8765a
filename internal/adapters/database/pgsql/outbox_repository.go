package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_ledger/internal/models"
	"github.com/SscSPs/erp_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxOutboxRepository struct {
	q Querier
}

func newPgxOutboxRepository(q Querier) *PgxOutboxRepository {
	return &PgxOutboxRepository{q: q}
}

var _ portsrepo.OutboxRepository = (*PgxOutboxRepository)(nil)

func (r *PgxOutboxRepository) StoreOutboxEntries(ctx context.Context, entries []domain.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		m := mapping.ToModelOutboxEntry(e)
		batch.Queue(`
			INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6);
		`, m.ID, m.AggregateID, m.AggregateType, m.EventType, m.Payload, m.CreatedAt)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return dbError("failed to store outbox entries", err)
	}
	return nil
}

// FetchUnpublished returns the oldest unpublished entries first.
func (r *PgxOutboxRepository) FetchUnpublished(ctx context.Context, batchSize int) ([]domain.OutboxEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at, published_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1;
	`, batchSize)
	if err != nil {
		return nil, dbError("failed to query outbox", err)
	}
	defer rows.Close()

	var out []domain.OutboxEntry
	for rows.Next() {
		var m models.OutboxEntry
		if err := rows.Scan(&m.ID, &m.AggregateID, &m.AggregateType, &m.EventType, &m.Payload, &m.CreatedAt, &m.PublishedAt); err != nil {
			return nil, dbError("failed to scan outbox entry", err)
		}
		out = append(out, mapping.ToDomainOutboxEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating outbox", err)
	}
	return out, nil
}

func (r *PgxOutboxRepository) MarkPublished(ctx context.Context, ids []string, publishedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.q.Exec(ctx, `
		UPDATE outbox SET published_at = $2
		WHERE id = ANY($1) AND published_at IS NULL;
	`, ids, publishedAt.UTC()); err != nil {
		return dbError("failed to mark outbox entries published", err)
	}
	return nil
}
