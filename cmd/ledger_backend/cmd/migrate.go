package cmd

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/platform/config"
	"github.com/SscSPs/erp_ledger/internal/platform/logging"
	"github.com/SscSPs/erp_ledger/pkg/database"
	"github.com/spf13/cobra"
)

var migrateSteps int

// migrateCmd groups the schema migration commands. Only the postgres driver
// has a schema; bolt and memory create their buckets on open.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the postgres schema",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if cfg.StoreDriver != config.DriverPostgres {
			return fmt.Errorf("%w: migrations need STORE_DRIVER=postgres, got %q", apperrors.ErrValidation, cfg.StoreDriver)
		}
		return nil
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration, or --steps of them (0 for all)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.MigrateDown(cfg.DatabaseURL, cfg.MigrationsPath, migrateSteps); err != nil {
			return err
		}
		logging.FromContext(cmd.Context()).Info("Migrations rolled back", slog.Int("steps", migrateSteps))
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back, 0 for all")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}
