package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/platform/logging"
	"github.com/SscSPs/erp_ledger/internal/platform/metrics"
)

// Publisher is the part of Producer the relay needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, messages ...Message) error
}

// OutboxRelay moves stored outbox entries to the broker. Delivery is at
// least once: a crash between Publish and MarkPublished republishes the batch.
type OutboxRelay struct {
	outbox    portsrepo.OutboxReader
	publisher Publisher
	topic     string
	batchSize int
	clock     portssvc.Clock
	metrics   *metrics.Recorder
}

// NewOutboxRelay creates a relay. A nil clock means the system clock.
func NewOutboxRelay(outbox portsrepo.OutboxReader, publisher Publisher, topic string, batchSize int, clock portssvc.Clock, rec *metrics.Recorder) *OutboxRelay {
	if clock == nil {
		clock = portssvc.SystemClock{}
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		topic:     topic,
		batchSize: batchSize,
		clock:     clock,
		metrics:   rec,
	}
}

// RelayOnce publishes one batch and returns how many entries were marked published.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	logger := logging.FromContext(ctx)

	entries, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		r.metrics.OutboxRelayed(0, true)
		return 0, fmt.Errorf("fetch unpublished outbox entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	messages := make([]Message, 0, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, toMessage(e))
		ids = append(ids, e.ID)
	}

	if err := r.publisher.Publish(ctx, r.topic, messages...); err != nil {
		r.metrics.OutboxRelayed(0, true)
		logger.Error("Failed to publish outbox batch",
			slog.String("topic", r.topic),
			slog.Int("entries", len(entries)),
			slog.String("error", err.Error()))
		return 0, err
	}

	if err := r.outbox.MarkPublished(ctx, ids, r.clock.Now().UTC()); err != nil {
		r.metrics.OutboxRelayed(0, true)
		logger.Error("Outbox batch published but not marked, it will be sent again",
			slog.Int("entries", len(entries)),
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("mark outbox entries published: %w", err)
	}

	r.metrics.OutboxRelayed(len(entries), false)
	logger.Debug("Outbox batch relayed", slog.String("topic", r.topic), slog.Int("entries", len(entries)))
	return len(entries), nil
}

// Drain relays batches until the outbox is empty or an error occurs.
func (r *OutboxRelay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := r.RelayOnce(ctx)
		total += n
		if err != nil {
			return total, err
		}
		if n < r.batchSize {
			return total, nil
		}
	}
}

// Run drains the outbox every interval until ctx is done. Failed rounds are
// logged and retried on the next tick.
func (r *OutboxRelay) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := r.Drain(ctx); err != nil && ctx.Err() == nil {
			logging.FromContext(ctx).Warn("Outbox relay round failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func toMessage(e domain.OutboxEntry) Message {
	return Message{
		Key:   []byte(e.AggregateID),
		Value: e.Payload,
		Headers: map[string]string{
			"event-id":       e.ID,
			"event-type":     e.EventType,
			"aggregate-type": e.AggregateType,
			"created-at":     e.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
}
