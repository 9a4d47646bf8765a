package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	journalFile       string
	journalWithLedger bool
	reverseDate       string
)

// journalCmd groups the draft journal entry commands.
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Create, inspect and reverse journal entries",
}

var journalCreateCmd = &cobra.Command{
	Use:   "create -f entry.yaml",
	Short: "Create a draft journal entry from a YAML file",
	Long: `Create a draft journal entry. The file layout is:

  postingDate: 2024-03-31
  reference: INV-1001
  description: March consulting
  lines:
    - account: acc-ar
      debit: "1500.00"
    - account: acc-revenue
      credit: "1500.00"`,
	Args: cobra.NoArgs,
	RunE: runJournalCreate,
}

var journalAppendCmd = &cobra.Command{
	Use:   "append <journal-entry-id> -f lines.yaml",
	Short: "Append lines from a YAML file to a draft journal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalAppend,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <journal-entry-id>",
	Short: "Show a journal entry and, with --ledger, its general ledger rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalReverseCmd = &cobra.Command{
	Use:   "reverse <journal-entry-id>",
	Short: "Draft the reversal of a posted journal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalReverse,
}

func init() {
	journalCreateCmd.Flags().StringVarP(&journalFile, "file", "f", "", "draft journal entry YAML file (required)")
	_ = journalCreateCmd.MarkFlagRequired("file")
	journalAppendCmd.Flags().StringVarP(&journalFile, "file", "f", "", "YAML file with a lines list (required)")
	_ = journalAppendCmd.MarkFlagRequired("file")
	journalShowCmd.Flags().BoolVar(&journalWithLedger, "ledger", false, "include the general ledger rows of a posted entry")
	journalReverseCmd.Flags().StringVar(&reverseDate, "date", "", "posting date of the reversal YYYY-MM-DD (default today, UTC)")

	journalCmd.AddCommand(journalCreateCmd, journalAppendCmd, journalShowCmd, journalReverseCmd)
}

func runJournalCreate(cmd *cobra.Command, args []string) error {
	var def dto.DraftJournalEntryDefinition
	if err := readYAML(journalFile, &def); err != nil {
		return err
	}
	req, err := def.ToRequest(actorFlag)
	if err != nil {
		return err
	}

	return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
		entry, err := app.services.Journal.CreateDraftJournalEntry(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), dto.ToJournalEntryResponse(entry))
	})
}

func runJournalAppend(cmd *cobra.Command, args []string) error {
	var def dto.DraftLinesDefinition
	if err := readYAML(journalFile, &def); err != nil {
		return err
	}
	lines, err := dto.ParseDraftLines(def.Lines)
	if err != nil {
		return err
	}

	return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
		entry, err := app.services.Journal.AppendLines(ctx, dto.AppendLinesRequest{
			JournalEntryID: args[0],
			Lines:          lines,
			Actor:          actorFlag,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), dto.ToJournalEntryResponse(entry))
	})
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
		entry, err := app.services.Journal.GetJournalEntry(ctx, args[0])
		if err != nil {
			return err
		}
		out := struct {
			dto.JournalEntryResponse
			LedgerEntries []dto.LedgerEntryResponse `json:"ledgerEntries,omitempty"`
		}{JournalEntryResponse: dto.ToJournalEntryResponse(entry)}
		if journalWithLedger {
			rows, err := app.services.Journal.ListLedgerEntries(ctx, entry.ID())
			if err != nil {
				return err
			}
			out.LedgerEntries = dto.ToLedgerEntryResponses(rows)
		}
		return printJSON(cmd.OutOrStdout(), out)
	})
}

func runJournalReverse(cmd *cobra.Command, args []string) error {
	req := dto.CreateReversalRequest{JournalEntryID: args[0], Actor: actorFlag}
	if reverseDate != "" {
		d, err := dto.ParseDate(reverseDate)
		if err != nil {
			return err
		}
		req.PostingDate = &d
	}

	return withApplication(cmd.Context(), func(ctx context.Context, app *application) error {
		entry, err := app.services.Journal.CreateReversal(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), dto.ToJournalEntryResponse(entry))
	})
}

// readYAML decodes path into v, rejecting unknown keys.
func readYAML(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: parse %s: %w", apperrors.ErrValidation, path, err)
	}
	return nil
}
