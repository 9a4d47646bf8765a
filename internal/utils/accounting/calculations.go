package accounting

import (
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceResult is the outcome of summing the lines of a journal entry.
type BalanceResult struct {
	Balanced    bool
	Empty       bool
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Difference is debits minus credits.
func (r BalanceResult) Difference() decimal.Decimal {
	return r.TotalDebit.Sub(r.TotalCredit)
}

// ValidateBalance sums debits and credits exactly. A line set with no lines
// is reported as Empty and never Balanced.
func ValidateBalance(lines []domain.JournalEntryLine) BalanceResult {
	debitsSum := decimal.Zero
	creditsSum := decimal.Zero

	for _, line := range lines {
		debitsSum = debitsSum.Add(line.Debit)
		creditsSum = creditsSum.Add(line.Credit)
	}

	return BalanceResult{
		Balanced:    len(lines) > 0 && debitsSum.Equal(creditsSum),
		Empty:       len(lines) == 0,
		TotalDebit:  debitsSum,
		TotalCredit: creditsSum,
	}
}

// ValidateLineExclusivity returns the first line that has both or neither side set.
func ValidateLineExclusivity(lines []domain.JournalEntryLine) error {
	for _, line := range lines {
		if err := line.ValidateExclusive(); err != nil {
			return err
		}
	}
	return nil
}

// SumLedger totals debits and credits of posted ledger rows.
func SumLedger(entries []domain.GeneralLedgerEntry) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}
