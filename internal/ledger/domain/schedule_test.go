package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence_DailyAndWeekly(t *testing.T) {
	assert.Equal(t, date(2024, time.March, 2), NextOccurrence(date(2024, time.March, 1), FrequencyDaily))
	assert.Equal(t, date(2024, time.March, 1), NextOccurrence(date(2024, time.February, 29), FrequencyDaily))
	assert.Equal(t, date(2024, time.March, 8), NextOccurrence(date(2024, time.March, 1), FrequencyWeekly))
	assert.Equal(t, date(2025, time.January, 3), NextOccurrence(date(2024, time.December, 27), FrequencyWeekly))
}

func TestNextOccurrence_MonthlyKeepsDayOfMonth(t *testing.T) {
	assert.Equal(t, date(2024, time.April, 15), NextOccurrence(date(2024, time.March, 15), FrequencyMonthly))
	assert.Equal(t, date(2025, time.January, 15), NextOccurrence(date(2024, time.December, 15), FrequencyMonthly))
}

func TestNextOccurrence_MonthlyClampsToLastValidDay(t *testing.T) {
	// Leap year: Jan 31 advances to Feb 29.
	assert.Equal(t, date(2024, time.February, 29), NextOccurrence(date(2024, time.January, 31), FrequencyMonthly))
	// Non-leap year: Feb 28.
	assert.Equal(t, date(2025, time.February, 28), NextOccurrence(date(2025, time.January, 31), FrequencyMonthly))
	// 31st into a 30-day month.
	assert.Equal(t, date(2024, time.April, 30), NextOccurrence(date(2024, time.March, 31), FrequencyMonthly))
}

func TestNextOccurrence_Yearly(t *testing.T) {
	assert.Equal(t, date(2025, time.June, 10), NextOccurrence(date(2024, time.June, 10), FrequencyYearly))
	// Feb 29 advances into a non-leap year as Feb 28.
	assert.Equal(t, date(2025, time.February, 28), NextOccurrence(date(2024, time.February, 29), FrequencyYearly))
}

func TestNextOccurrence_PreservesTimeOfDayAndLocation(t *testing.T) {
	prev := time.Date(2024, time.January, 31, 14, 30, 5, 0, time.UTC)
	next := NextOccurrence(prev, FrequencyMonthly)
	assert.Equal(t, time.Date(2024, time.February, 29, 14, 30, 5, 0, time.UTC), next)
}
