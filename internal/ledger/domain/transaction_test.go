package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	ledgerErrors "github.com/keebs5225/TrackVault/internal/ledger/errors"
)

func TestTransactionSignedAmount(t *testing.T) {
	deposit := Transaction{Amount: decimal.NewFromInt(100), Direction: DirectionDeposit}
	withdrawal := Transaction{Amount: decimal.NewFromInt(30), Direction: DirectionWithdrawal}

	assert.True(t, deposit.SignedAmount().Equal(decimal.NewFromInt(100)))
	assert.True(t, withdrawal.SignedAmount().Equal(decimal.NewFromInt(-30)))
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		AccountID: 1,
		Amount:    decimal.NewFromFloat(19.99),
		Direction: DirectionWithdrawal,
		Date:      time.Now(),
	}
	assert.NoError(t, valid.Validate())

	zeroAmount := valid
	zeroAmount.Amount = decimal.Zero
	assert.ErrorIs(t, zeroAmount.Validate(), ledgerErrors.ErrInvalidAmount)

	negativeAmount := valid
	negativeAmount.Amount = decimal.NewFromInt(-5)
	assert.ErrorIs(t, negativeAmount.Validate(), ledgerErrors.ErrInvalidAmount)

	badDirection := valid
	badDirection.Direction = "transfer"
	assert.True(t, ledgerErrors.IsValidationError(badDirection.Validate()))
}

func TestRecurringTemplateValidate(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 6, 0)
	valid := RecurringTemplate{
		AccountID: 1,
		Amount:    decimal.NewFromInt(50),
		Direction: DirectionDeposit,
		Frequency: FrequencyMonthly,
		StartDate: start,
		EndDate:   &end,
	}
	assert.NoError(t, valid.Validate())

	badFrequency := valid
	badFrequency.Frequency = "fortnightly"
	assert.True(t, ledgerErrors.IsValidationError(badFrequency.Validate()))

	endBeforeStart := valid
	early := start.AddDate(0, 0, -1)
	endBeforeStart.EndDate = &early
	assert.True(t, ledgerErrors.IsValidationError(endBeforeStart.Validate()))
}

func TestRecurringTemplateExpired(t *testing.T) {
	end := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	template := RecurringTemplate{EndDate: &end, NextRunDate: end}
	assert.False(t, template.Expired())

	template.NextRunDate = end.AddDate(0, 0, 1)
	assert.True(t, template.Expired())

	template.EndDate = nil
	assert.False(t, template.Expired())
}
