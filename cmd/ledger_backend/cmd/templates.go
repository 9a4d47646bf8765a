package cmd

import (
	"context"

	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/spf13/cobra"
)

var templatesFile string

// templatesCmd groups the reference data commands.
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage accounts and recurring journal templates",
}

var templatesSyncCmd = &cobra.Command{
	Use:   "sync -f ledger.yaml",
	Short: "Upsert accounts by id and recurring templates by code",
	Long: `Load the chart of accounts and the recurring templates from a YAML file.
Existing templates keep their generation history.

  accounts:
    - id: acc-rent
      code: "6100"
      name: Rent expense
      type: EXPENSE
  templates:
    - code: RENT
      description: Office rent
      debitAccount: acc-rent
      creditAccount: acc-bank
      amount: "1200.00"
      frequency: monthly
      startDate: 2024-01-31`,
	Args: cobra.NoArgs,
	RunE: runTemplatesSync,
}

func init() {
	templatesSyncCmd.Flags().StringVarP(&templatesFile, "file", "f", "", "definitions YAML file (required)")
	_ = templatesSyncCmd.MarkFlagRequired("file")
	templatesCmd.AddCommand(templatesSyncCmd)
}

func runTemplatesSync(cmd *cobra.Command, args []string) error {
	var defs dto.LedgerDefinitions
	if err := readYAML(templatesFile, &defs); err != nil {
		return err
	}

	return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
		res, err := app.services.Catalog.SyncDefinitions(ctx, defs, actorFlag)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	})
}
