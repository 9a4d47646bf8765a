package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/erp_ledger/internal/adapters/messaging/kafka"
	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/platform/logging"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// relayCmd represents the relay command.
var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Publish every pending outbox event to Kafka once",
	Long: `Drain the outbox: publish pending events to KAFKA_TOPIC in batches of
OUTBOX_BATCH_SIZE and mark them published. Delivery is at least once.`,
	Args: cobra.NoArgs,
	RunE: runRelay,
}

func runRelay(cmd *cobra.Command, args []string) error {
	return withApplication(cmd.Context(), func(ctx context.Context, app *application) (err error) {
		producer, err := newProducer(app)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, producer.Close()) }()

		relay := newRelay(app, producer)
		n, err := relay.Drain(ctx)
		logging.FromContext(ctx).Info("Outbox relay finished", slog.Int("published", n))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]int{"published": n})
	})
}

func newProducer(app *application) (*kafka.Producer, error) {
	if len(app.cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("%w: KAFKA_BROKERS is not set", apperrors.ErrValidation)
	}
	return kafka.NewProducer(app.cfg.Kafka.Brokers), nil
}

func newRelay(app *application, producer *kafka.Producer) *kafka.OutboxRelay {
	return kafka.NewOutboxRelay(app.repos.OutboxRepo, producer, app.cfg.Kafka.Topic, app.cfg.Kafka.OutboxBatchSize, nil, app.metrics)
}
