package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoan_StandardMortgage(t *testing.T) {
	// 200k at 6% over 30 years: the classic amortization example.
	result, err := Loan(LoanParams{Principal: 200000, AnnualRate: 6, TermMonths: 360})
	require.NoError(t, err)

	assert.InDelta(t, 1199.10, result.MonthlyPayment, 0.01)
	// Totals come from the unrounded payment, so they carry the fractional
	// cents the rounded monthly figure drops.
	assert.InDelta(t, 431676.38, result.TotalPayment, 0.01)
	assert.InDelta(t, 231676.38, result.TotalInterest, 0.01)
}

func TestLoan_InvalidParams(t *testing.T) {
	_, err := Loan(LoanParams{Principal: 0, AnnualRate: 6, TermMonths: 12})
	assert.ErrorIs(t, err, ErrInvalidPrincipal)

	_, err = Loan(LoanParams{Principal: 1000, AnnualRate: 100, TermMonths: 12})
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = Loan(LoanParams{Principal: 1000, AnnualRate: 6, TermMonths: 0})
	assert.ErrorIs(t, err, ErrInvalidTerm)
}

func TestSavings_DepositsWithoutInterest(t *testing.T) {
	result, err := Savings(SavingsParams{Initial: 100, MonthlyDeposit: 50, AnnualRate: 0, TermMonths: 12})
	require.NoError(t, err)

	assert.Equal(t, 700.0, result.Balance)
	assert.Equal(t, 600.0, result.Contributions)
	assert.Equal(t, 0.0, result.InterestEarned)
}

func TestSavings_CompoundsMonthly(t *testing.T) {
	result, err := Savings(SavingsParams{Initial: 1000, MonthlyDeposit: 100, AnnualRate: 12, TermMonths: 12})
	require.NoError(t, err)

	// 1% per month on the running balance, deposit added after interest.
	balance := 1000.0
	for i := 0; i < 12; i++ {
		balance = balance*1.01 + 100
	}
	assert.InDelta(t, balance, result.Balance, 0.01)
	assert.Equal(t, 1200.0, result.Contributions)
	assert.InDelta(t, balance-1000-1200, result.InterestEarned, 0.01)
}

func TestInvestment_DoublingAtSevenPercent(t *testing.T) {
	result, err := Investment(InvestmentParams{Principal: 10000, AnnualRate: 7, Years: 10})
	require.NoError(t, err)

	assert.InDelta(t, 19671.51, result.FutureValue, 0.01)
	assert.InDelta(t, 9671.51, result.TotalInterest, 0.01)
}

func TestInvestment_FractionalYears(t *testing.T) {
	result, err := Investment(InvestmentParams{Principal: 5000, AnnualRate: 4, Years: 2.5})
	require.NoError(t, err)
	// 4% compounded annually over 2.5 years: 5000 * 1.04^2.5.
	assert.InDelta(t, 5515.10, result.FutureValue, 0.01)
	assert.InDelta(t, 515.10, result.TotalInterest, 0.01)
}
