package domain

import "time"

// NextOccurrence computes the occurrence that follows prev for the given
// frequency. Pure, no clock access; the materializer calls it exactly once
// per generated transaction.
//
// Monthly and yearly advancement keeps the day-of-month and clamps to the
// last valid day of the target month when that day does not exist:
// Jan 31 + monthly -> Feb 29 in leap years, Feb 28 otherwise. A template
// anchored on the 31st therefore settles onto month-ends rather than
// drifting into the next month.
func NextOccurrence(prev time.Time, frequency Frequency) time.Time {
	switch frequency {
	case FrequencyDaily:
		return prev.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return prev.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return addMonthsClamped(prev, 1)
	case FrequencyYearly:
		return addMonthsClamped(prev, 12)
	}
	// Unreachable for validated templates; callers reject unknown
	// frequencies before advancing.
	return prev
}

func addMonthsClamped(t time.Time, months int) time.Time {
	// time.AddDate normalizes Jan 31 + 1 month into Mar 2/3, so resolve
	// year/month on day 1 first and clamp the day afterwards.
	anchor := time.Date(t.Year(), t.Month()+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := lastDayOfMonth(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
