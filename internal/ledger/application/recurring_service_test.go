package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keebs5225/TrackVault/internal/ledger/domain"
	ledgerErrors "github.com/keebs5225/TrackVault/internal/ledger/errors"
	"github.com/keebs5225/TrackVault/internal/ledger/infrastructure"
)

func newRecurringFixture(t *testing.T) (*infrastructure.MockLedger, *RecurringService, *domain.Account) {
	t.Helper()
	ledger := infrastructure.NewMockLedger()
	service := NewRecurringService(ledger.TemplateRepository(), ledger.TransactionRepository(), ledger.AccountRepository())
	account := newTestAccount(t, ledger, "user-1")
	return ledger, service, account
}

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func TestProcessDueTemplates_CatchesUpMissedDays(t *testing.T) {
	ledger, service, account := newRecurringFixture(t)

	start := day(2026, time.March, 1)
	template := &domain.RecurringTemplate{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(5), Direction: domain.DirectionWithdrawal,
		Frequency: domain.FrequencyDaily, StartDate: start,
		Title: "Coffee",
	}
	require.NoError(t, service.CreateTemplate(template))
	assert.True(t, template.NextRunDate.Equal(start))

	// Scanner runs three days after the start date: the three elapsed
	// occurrences (Mar 1, 2, 3) all materialize in one pass.
	now := day(2026, time.March, 3)
	service.ProcessDueTemplates(context.Background(), now)

	assert.Len(t, ledger.Transactions, 3)
	assert.True(t, ledger.AccountBalance(account.ID).Equal(decf(-15)))

	stored, err := ledger.TemplateRepository().FindByID(template.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, stored.NextRunDate.Equal(day(2026, time.March, 4)))

	for _, tr := range ledger.Transactions {
		assert.Equal(t, "Coffee", tr.Description)
		assert.Equal(t, account.ID, tr.AccountID)
	}
}

func TestProcessDueTemplates_SecondScanSameDayIsIdempotent(t *testing.T) {
	ledger, service, account := newRecurringFixture(t)

	template := &domain.RecurringTemplate{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(20), Direction: domain.DirectionDeposit,
		Frequency: domain.FrequencyDaily, StartDate: day(2026, time.March, 1),
		Title: "Allowance",
	}
	require.NoError(t, service.CreateTemplate(template))

	now := day(2026, time.March, 1)
	service.ProcessDueTemplates(context.Background(), now)
	require.Len(t, ledger.Transactions, 1)

	service.ProcessDueTemplates(context.Background(), now)
	assert.Len(t, ledger.Transactions, 1)
	assert.True(t, ledger.AccountBalance(account.ID).Equal(decf(20)))
}

func TestProcessDueTemplates_EndDateStopsGeneration(t *testing.T) {
	ledger, service, account := newRecurringFixture(t)

	end := day(2026, time.March, 2)
	template := &domain.RecurringTemplate{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(10), Direction: domain.DirectionDeposit,
		Frequency: domain.FrequencyDaily, StartDate: day(2026, time.March, 1),
		EndDate: &end, Title: "Trial",
	}
	require.NoError(t, service.CreateTemplate(template))

	service.ProcessDueTemplates(context.Background(), day(2026, time.March, 10))
	assert.Len(t, ledger.Transactions, 2)

	stored, err := ledger.TemplateRepository().FindByID(template.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, stored.Expired())

	// Later scans never revive an expired template.
	service.ProcessDueTemplates(context.Background(), day(2026, time.April, 1))
	assert.Len(t, ledger.Transactions, 2)
}

func TestProcessDueTemplates_FailingTemplateDoesNotBlockOthers(t *testing.T) {
	ledger, service, account := newRecurringFixture(t)
	closed := &domain.Account{UserID: "user-1", Name: "Closed", Type: "checking", Currency: "USD"}
	require.NoError(t, ledger.AccountRepository().Save(closed))

	broken := &domain.RecurringTemplate{
		UserID: "user-1", AccountID: closed.ID,
		Amount: decf(10), Direction: domain.DirectionDeposit,
		Frequency: domain.FrequencyDaily, StartDate: day(2026, time.March, 1),
		Title: "Broken",
	}
	require.NoError(t, service.CreateTemplate(broken))
	healthy := &domain.RecurringTemplate{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(7), Direction: domain.DirectionDeposit,
		Frequency: domain.FrequencyDaily, StartDate: day(2026, time.March, 1),
		Title: "Healthy",
	}
	require.NoError(t, service.CreateTemplate(healthy))

	// The broken template's account is closed before the scan; its failure
	// is logged and skipped while the healthy template still materializes.
	require.NoError(t, ledger.AccountRepository().Deactivate(closed.ID, "user-1"))
	service.ProcessDueTemplates(context.Background(), day(2026, time.March, 1))

	assert.Len(t, ledger.Transactions, 1)
	assert.True(t, ledger.AccountBalance(account.ID).Equal(decf(7)))

	stored, err := ledger.TemplateRepository().FindByID(broken.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, stored.NextRunDate.Equal(day(2026, time.March, 1)), "failed template keeps its schedule position")
}

func TestProcessDueTemplates_StoreOutageDoesNotAdvanceSchedule(t *testing.T) {
	ledger, service, account := newRecurringFixture(t)

	template := &domain.RecurringTemplate{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(7), Direction: domain.DirectionDeposit,
		Frequency: domain.FrequencyDaily, StartDate: day(2026, time.March, 1),
		Title: "Allowance",
	}
	require.NoError(t, service.CreateTemplate(template))

	ledger.FailAdjustBalance = ledgerErrors.ErrStoreUnavailable
	service.ProcessDueTemplates(context.Background(), day(2026, time.March, 1))
	assert.Empty(t, ledger.Transactions)

	// The next scan picks the template up again from where it stood.
	ledger.FailAdjustBalance = nil
	service.ProcessDueTemplates(context.Background(), day(2026, time.March, 1))
	assert.Len(t, ledger.Transactions, 1)
	assert.True(t, ledger.AccountBalance(account.ID).Equal(decf(7)))
}

func TestProcessDueTemplates_SkipsTemplatesNotYetDue(t *testing.T) {
	ledger, service, account := newRecurringFixture(t)

	template := &domain.RecurringTemplate{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(10), Direction: domain.DirectionDeposit,
		Frequency: domain.FrequencyWeekly, StartDate: day(2026, time.March, 10),
		Title: "Future",
	}
	require.NoError(t, service.CreateTemplate(template))

	service.ProcessDueTemplates(context.Background(), day(2026, time.March, 5))
	assert.Empty(t, ledger.Transactions)
}

func TestProcessDueTemplates_MonthlyClampedCatchUp(t *testing.T) {
	ledger, service, account := newRecurringFixture(t)

	template := &domain.RecurringTemplate{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(1200), Direction: domain.DirectionWithdrawal,
		Frequency: domain.FrequencyMonthly, StartDate: day(2026, time.January, 31),
		Title: "Rent",
	}
	require.NoError(t, service.CreateTemplate(template))

	service.ProcessDueTemplates(context.Background(), day(2026, time.March, 1))
	// Jan 31 and Feb 28 have elapsed; March's clamped date has not.
	require.Len(t, ledger.Transactions, 2)

	dates := make([]time.Time, 0, len(ledger.Transactions))
	for _, tr := range ledger.Transactions {
		dates = append(dates, tr.Date)
	}
	assert.Contains(t, dates, day(2026, time.January, 31))
	assert.Contains(t, dates, day(2026, time.February, 28))
}

func TestCreateTemplate_ValidatesAccountOwnership(t *testing.T) {
	_, service, account := newRecurringFixture(t)

	err := service.CreateTemplate(&domain.RecurringTemplate{
		UserID: "user-2", AccountID: account.ID,
		Amount: decf(10), Direction: domain.DirectionDeposit,
		Frequency: domain.FrequencyDaily, StartDate: day(2026, time.March, 1),
		Title: "Foreign",
	})
	assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAccount)
}

func TestCreateTemplate_RejectsUnusableAccounts(t *testing.T) {
	ledger, service, account := newRecurringFixture(t)

	err := service.CreateTemplate(&domain.RecurringTemplate{
		UserID: "user-1", AccountID: account.ID + 99,
		Amount: decf(10), Direction: domain.DirectionDeposit,
		Frequency: domain.FrequencyDaily, StartDate: day(2026, time.March, 1),
		Title: "Nowhere",
	})
	assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAccount)

	require.NoError(t, ledger.AccountRepository().Deactivate(account.ID, "user-1"))
	err = service.CreateTemplate(&domain.RecurringTemplate{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(10), Direction: domain.DirectionDeposit,
		Frequency: domain.FrequencyDaily, StartDate: day(2026, time.March, 1),
		Title: "Closed",
	})
	assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAccount)
}

func TestUpdateTemplate_RejectsRetargetToForeignAccount(t *testing.T) {
	ledger, service, account := newRecurringFixture(t)
	foreign := newTestAccount(t, ledger, "user-2")

	template := &domain.RecurringTemplate{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(10), Direction: domain.DirectionDeposit,
		Frequency: domain.FrequencyDaily, StartDate: day(2026, time.March, 1),
		Title: "Allowance",
	}
	require.NoError(t, service.CreateTemplate(template))

	_, err := service.UpdateTemplate("user-1", template.ID, TemplateUpdate{AccountID: &foreign.ID})
	assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAccount)

	stored, err := ledger.TemplateRepository().FindByID(template.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.AccountID)
}

func TestUpdateTemplate_RejectsNextRunPastEndDate(t *testing.T) {
	ledger, service, account := newRecurringFixture(t)

	end := day(2026, time.March, 10)
	template := &domain.RecurringTemplate{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(10), Direction: domain.DirectionDeposit,
		Frequency: domain.FrequencyDaily, StartDate: day(2026, time.March, 1),
		EndDate: &end, Title: "Trial",
	}
	require.NoError(t, service.CreateTemplate(template))

	beyond := day(2026, time.March, 11)
	_, err := service.UpdateTemplate("user-1", template.ID, TemplateUpdate{NextRunDate: &beyond})
	assert.ErrorIs(t, err, ledgerErrors.ErrScheduleExhausted)

	stored, err := ledger.TemplateRepository().FindByID(template.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, stored.NextRunDate.Equal(day(2026, time.March, 1)))

	// Ending a template early is still fine: only an explicit next-run move
	// past the end is a contradiction.
	service.ProcessDueTemplates(context.Background(), day(2026, time.March, 2))
	early := day(2026, time.March, 1)
	updated, err := service.UpdateTemplate("user-1", template.ID, TemplateUpdate{EndDate: &early})
	require.NoError(t, err)
	assert.True(t, updated.Expired())
}

func TestProcessDueTemplates_StaleSnapshotMaterializesNothing(t *testing.T) {
	ledger, service, account := newRecurringFixture(t)

	template := &domain.RecurringTemplate{
		UserID: "user-1", AccountID: account.ID,
		Amount: decf(20), Direction: domain.DirectionDeposit,
		Frequency: domain.FrequencyDaily, StartDate: day(2026, time.March, 1),
		Title: "Allowance",
	}
	require.NoError(t, service.CreateTemplate(template))

	// Capture the due snapshot a second overlapping scan would be holding,
	// then let the first scan finish before the stale copy is processed.
	now := day(2026, time.March, 1)
	stale, err := ledger.TemplateRepository().FindDue(now)
	require.NoError(t, err)
	require.Len(t, stale, 1)

	service.ProcessDueTemplates(context.Background(), now)
	require.Len(t, ledger.Transactions, 1)

	generated, err := service.materializeTemplate(&stale[0], now)
	require.NoError(t, err)
	assert.Zero(t, generated)
	assert.Len(t, ledger.Transactions, 1)
	assert.True(t, ledger.AccountBalance(account.ID).Equal(decf(20)))
}
