package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/SscSPs/erp_ledger/internal/adapters/database/boltdb"
	"github.com/SscSPs/erp_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/erp_ledger/internal/adapters/database/pgsql"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/core/services"
	"github.com/SscSPs/erp_ledger/internal/handlers"
	"github.com/SscSPs/erp_ledger/internal/platform/config"
	"github.com/SscSPs/erp_ledger/internal/platform/logging"
	"github.com/SscSPs/erp_ledger/internal/platform/metrics"
	"github.com/SscSPs/erp_ledger/pkg/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application is everything a command needs once the store is open.
type application struct {
	cfg      *config.Config
	repos    portsrepo.RepositoryProvider
	services *portssvc.ServiceContainer
	registry *prometheus.Registry
	metrics  *metrics.Recorder
	ready    handlers.ReadinessCheck
}

// newApplication opens the configured store and builds the services on top of it.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	logger := logging.FromContext(ctx)

	app := &application{cfg: cfg, registry: prometheus.NewRegistry()}
	app.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.metrics = metrics.NewRecorder(app.registry)

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if cfg.RunMigrations {
			logger.Info("Running database migrations...", slog.String("path", cfg.MigrationsPath))
			if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				return nil, err
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			Ping:     cfg.EnableDBCheck,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		app.repos = pgsql.NewRepositoryProvider(pool)
		app.ready = pool.Ping
	case config.DriverBolt:
		store, err := boltdb.Open(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		app.repos = store.Provider()
		logger.Debug("Bolt store opened", slog.String("path", cfg.BoltPath))
	case config.DriverMemory:
		logger.Warn("Using the in-memory store; nothing outlives this process")
		app.repos = memory.New().Provider()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	app.services = services.NewServiceContainer(cfg, app.repos, services.WithMetrics(app.metrics))
	return app, nil
}

// Close releases the store.
func (a *application) Close() error {
	if a.repos.Close == nil {
		return nil
	}
	return a.repos.Close()
}

// withApplication opens the application for the duration of fn.
func withApplication(ctx context.Context, fn func(ctx context.Context, app *application) error) (err error) {
	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logging.FromContext(ctx).Error("Failed to close store", slog.String("error", cerr.Error()))
		}
	}()
	return fn(ctx, app)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
