package accounting_test

import (
	"testing"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/utils/accounting"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(debit, credit string) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		AccountID: "acc",
		Debit:     decimal.RequireFromString(debit),
		Credit:    decimal.RequireFromString(credit),
	}
}

// decimals compare by value, not by internal representation
var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestValidateBalance(t *testing.T) {
	tests := []struct {
		name  string
		lines []domain.JournalEntryLine
		want  accounting.BalanceResult
	}{
		{
			name:  "balanced pair",
			lines: []domain.JournalEntryLine{line("100", "0"), line("0", "100")},
			want: accounting.BalanceResult{
				Balanced:    true,
				TotalDebit:  decimal.NewFromInt(100),
				TotalCredit: decimal.NewFromInt(100),
			},
		},
		{
			name:  "off by one",
			lines: []domain.JournalEntryLine{line("100", "0"), line("0", "99")},
			want: accounting.BalanceResult{
				TotalDebit:  decimal.NewFromInt(100),
				TotalCredit: decimal.NewFromInt(99),
			},
		},
		{
			name:  "empty is unbalanced",
			lines: nil,
			want: accounting.BalanceResult{
				Empty:       true,
				TotalDebit:  decimal.Zero,
				TotalCredit: decimal.Zero,
			},
		},
		{
			name: "exact arithmetic on small fractions",
			lines: []domain.JournalEntryLine{
				line("0.1", "0"), line("0.2", "0"), line("0", "0.3"),
			},
			want: accounting.BalanceResult{
				Balanced:    true,
				TotalDebit:  decimal.RequireFromString("0.3"),
				TotalCredit: decimal.RequireFromString("0.3"),
			},
		},
		{
			name: "no rounding of sub-cent amounts",
			lines: []domain.JournalEntryLine{
				line("10.0001", "0"), line("0", "10.0002"),
			},
			want: accounting.BalanceResult{
				TotalDebit:  decimal.RequireFromString("10.0001"),
				TotalCredit: decimal.RequireFromString("10.0002"),
			},
		},
		{
			name: "lines carrying both sides still sum",
			lines: []domain.JournalEntryLine{
				line("5", "5"), line("10", "0"), line("0", "10"),
			},
			want: accounting.BalanceResult{
				Balanced:    true,
				TotalDebit:  decimal.NewFromInt(15),
				TotalCredit: decimal.NewFromInt(15),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := accounting.ValidateBalance(tt.lines)
			if diff := cmp.Diff(tt.want, got, decimalEqual); diff != "" {
				t.Errorf("ValidateBalance() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBalanceResult_Difference(t *testing.T) {
	r := accounting.ValidateBalance([]domain.JournalEntryLine{line("100", "0"), line("0", "99.5")})
	assert.True(t, r.Difference().Equal(decimal.RequireFromString("0.5")))
}

func TestValidateLineExclusivity(t *testing.T) {
	assert.NoError(t, accounting.ValidateLineExclusivity([]domain.JournalEntryLine{line("1", "0"), line("0", "1")}))
	assert.ErrorIs(t, accounting.ValidateLineExclusivity([]domain.JournalEntryLine{line("1", "0"), line("1", "1")}), domain.ErrLineSidesNotExclusive)
	assert.ErrorIs(t, accounting.ValidateLineExclusivity([]domain.JournalEntryLine{line("0", "0")}), domain.ErrLineSidesNotExclusive)
}

func TestSumLedger(t *testing.T) {
	debit, credit := accounting.SumLedger([]domain.GeneralLedgerEntry{
		{Debit: decimal.RequireFromString("12.50"), Credit: decimal.Zero},
		{Debit: decimal.Zero, Credit: decimal.RequireFromString("12.5")},
	})
	assert.True(t, debit.Equal(credit))
}
