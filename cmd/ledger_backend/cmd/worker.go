package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/erp_ledger/internal/handlers"
	"github.com/SscSPs/erp_ledger/internal/platform/logging"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// workerCmd represents the worker command.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the recurring scheduler and the outbox relay",
	Long: `Run until interrupted:
- generate-due every WORKER_RECURRING_INTERVAL
- outbox relay every OUTBOX_POLL_INTERVAL (only when KAFKA_BROKERS is set)
- /health, /ready and /metrics on WORKER_ADDR`,
	Args: cobra.NoArgs,
	RunE: runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	return withApplication(cmd.Context(), func(ctx context.Context, app *application) (err error) {
		logger := logging.FromContext(ctx)
		g, ctx := errgroup.WithContext(ctx)

		srv := &http.Server{
			Addr:              app.cfg.Worker.Addr,
			Handler:           handlers.NewRouter(logger, app.cfg.IsProduction, app.ready, app.registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("Worker HTTP server starting", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		g.Go(func() error {
			return runScheduler(ctx, app, app.cfg.Worker.RecurringInterval)
		})

		if len(app.cfg.Kafka.Brokers) > 0 {
			producer, perr := newProducer(app)
			if perr != nil {
				return perr
			}
			defer func() { err = multierr.Append(err, producer.Close()) }()
			relay := newRelay(app, producer)
			g.Go(func() error {
				return relay.Run(ctx, app.cfg.Kafka.PollInterval)
			})
		} else {
			logger.Warn("KAFKA_BROKERS not set, outbox relay disabled")
		}

		return g.Wait()
	})
}

// runScheduler generates due drafts now and then every interval. Failures
// are logged and retried on the next round.
func runScheduler(ctx context.Context, app *application, interval time.Duration) error {
	logger := logging.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		results, err := app.services.Recurring.GenerateDue(ctx, time.Now().UTC(), actorFlag)
		if err != nil && ctx.Err() == nil {
			logger.Error("Recurring generation round failed",
				slog.Int("generated", len(results)),
				slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
