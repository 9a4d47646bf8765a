// Package cmd provides the CLI commands of the ledger backend.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/platform/config"
	"github.com/SscSPs/erp_ledger/internal/platform/logging"
	"github.com/spf13/cobra"
)

var (
	envFile        string
	driverOverride string
	actorFlag      string

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ledger_backend",
	Short: "Double-entry ledger posting engine",
	Long: `ledger_backend posts draft journal entries to the general ledger and
generates drafts from recurring journal templates.

Example:
  ledger_backend templates sync -f ledger.yaml
  ledger_backend generate 7f1c... --date 2024-02-29
  ledger_backend post 2b9e... --actor alice
  ledger_backend worker`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		loaded, err := config.LoadConfig(files...)
		if err != nil {
			return fmt.Errorf("%w: invalid configuration: %w", apperrors.ErrValidation, err)
		}
		if driverOverride != "" {
			loaded.StoreDriver = driverOverride
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
			}
		}
		cfg = loaded

		// stdout carries command output, so logs go to stderr
		logger := logging.InitLogger(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, cmd.ErrOrStderr())
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger.With(slog.String("command", cmd.Name()))))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default is .env when present)")
	rootCmd.PersistentFlags().StringVar(&driverOverride, "driver", "", "store driver: postgres, bolt or memory (overrides STORE_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "actor recorded on created or posted entries (default LEDGER_DEFAULT_ACTOR)")

	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(generateDueCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(relayCmd)
	rootCmd.AddCommand(workerCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	reportError(rootCmd.ErrOrStderr(), err)
	return ExitCode(err)
}

func reportError(w io.Writer, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindNone || kind == apperrors.KindInternal {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error [%s]: %v\n", kind, err)
}

// ExitCode maps an error to the process exit status. Caller mistakes exit
// with 2, missing data with 3, state conflicts with 4 and everything else with 1.
func ExitCode(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindNone:
		return 0
	case apperrors.KindValidation, apperrors.KindUnbalanced:
		return 2
	case apperrors.KindNotFound:
		return 3
	case apperrors.KindAlreadyPosted, apperrors.KindConflict, apperrors.KindDuplicate:
		return 4
	case apperrors.KindCanceled:
		if errors.Is(err, context.Canceled) {
			return 130
		}
		return 1
	default:
		return 1
	}
}
