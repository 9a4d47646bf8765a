package cmd

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/spf13/cobra"
)

var (
	generateDate string
	dueAsOf      string
)

// generateCmd represents the generate command.
var generateCmd = &cobra.Command{
	Use:   "generate <template-id>",
	Short: "Generate the draft journal entry of a recurring template for one date",
	Long: `Generate a draft journal entry from a recurring template. At most one
draft exists per template and calendar date; asking again returns the
existing draft (or fails when LEDGER_RECURRING_DUPLICATE_POLICY=reject).

Example:
  ledger_backend generate 7f1c... --date 2024-02-29`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

// generateDueCmd represents the generate-due command.
var generateDueCmd = &cobra.Command{
	Use:   "generate-due",
	Short: "Generate every due draft of the active recurring templates",
	Long: `Catch every active recurring template up to a date. A failing template
does not stop the others; all failures are reported at the end.

Example:
  ledger_backend generate-due --as-of 2024-03-31`,
	Args: cobra.NoArgs,
	RunE: runGenerateDue,
}

func init() {
	generateCmd.Flags().StringVar(&generateDate, "date", "", "target date YYYY-MM-DD (default today, UTC)")
	generateDueCmd.Flags().StringVar(&dueAsOf, "as-of", "", "generate dates up to and including YYYY-MM-DD (default today, UTC)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req := dto.GenerateFromTemplateRequest{TemplateID: args[0], Actor: actorFlag}
	if generateDate != "" {
		d, err := dto.ParseDate(generateDate)
		if err != nil {
			return err
		}
		req.GenerateForDate = &d
	}

	return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
		res, err := app.services.Recurring.GenerateFromTemplate(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	})
}

func runGenerateDue(cmd *cobra.Command, args []string) error {
	asOf := time.Now().UTC()
	if dueAsOf != "" {
		d, err := dto.ParseDate(dueAsOf)
		if err != nil {
			return err
		}
		asOf = d
	}

	return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
		results, err := app.services.Recurring.GenerateDue(ctx, asOf, actorFlag)
		if perr := printJSON(cmd.OutOrStdout(), results); perr != nil && err == nil {
			err = perr
		}
		return err
	})
}
