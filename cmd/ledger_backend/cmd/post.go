package cmd

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/spf13/cobra"
)

var (
	postDate      string
	postReference string
	postValidate  bool
)

// postCmd represents the post command.
var postCmd = &cobra.Command{
	Use:   "post <journal-entry-id>",
	Short: "Post a draft journal entry to the general ledger",
	Long: `Post a draft journal entry. One general ledger row is written per line,
the entry is marked posted and a posted event is queued in the outbox,
all in one transaction.

Example:
  ledger_backend post 2b9e... --date 2024-03-31 --reference INV-1001`,
	Args: cobra.ExactArgs(1),
	RunE: runPost,
}

func init() {
	postCmd.Flags().StringVar(&postDate, "date", "", "posting date YYYY-MM-DD (default today, UTC)")
	postCmd.Flags().StringVar(&postReference, "reference", "", "reference written on the ledger rows (default the entry reference)")
	postCmd.Flags().BoolVar(&postValidate, "validate", true, "reject unbalanced entries (default LEDGER_VALIDATE_BALANCES)")
}

func runPost(cmd *cobra.Command, args []string) error {
	req := dto.PostJournalEntryRequest{
		JournalEntryID: args[0],
		PostingDate:    time.Now().UTC(),
		Actor:          actorFlag,
	}
	if postDate != "" {
		d, err := dto.ParseDate(postDate)
		if err != nil {
			return err
		}
		req.PostingDate = d
	}
	if postReference != "" {
		req.PostingReference = &postReference
	}
	if cmd.Flags().Changed("validate") {
		req.ValidateBalances = &postValidate
	}

	return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
		id, err := app.services.Posting.PostJournalEntry(ctx, req)
		if err != nil {
			return err
		}
		rows, err := app.services.Journal.ListLedgerEntries(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), struct {
			JournalEntryID string                    `json:"journalEntryID"`
			LedgerEntries  []dto.LedgerEntryResponse `json:"ledgerEntries"`
		}{id, dto.ToLedgerEntryResponses(rows)})
	})
}
