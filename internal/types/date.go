package types

import (
	"time"
)

const secondsPerDay = int64(24 * time.Hour / time.Second)

// PeriodEnd returns the end of a billing period that starts at start.
// The start is advanced by the cycle's month count with month-end clamping
// (Jan 31 + 1 month is Feb 28 or Feb 29, never Mar 2/3) and the result is
// truncated to the start of its day in start's location.
func PeriodEnd(start time.Time, cycle BillingCycle) time.Time {
	return StartOfDay(AddClampedMonths(start, cycle.Months()))
}

// AnchorDate returns midnight of anchorDay in the given month, clamping the
// day to the last valid day of that month. Month and year are normalized the
// same way time.Date does, so month 0 is December of the previous year.
// anchorDay is assumed to be within [MinAnchorDay, MaxAnchorDay].
func AnchorDate(year int, month time.Month, anchorDay int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	day := anchorDay
	if last := DaysInMonth(first.Year(), first.Month(), loc); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}

// AddClampedMonths adds months to t keeping the time of day. If the day of
// month does not exist in the target month it is clamped to the last day.
// This leverages time.Date normalization for year rollover in both directions.
func AddClampedMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := DaysInMonth(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}

	return time.Date(first.Year(), first.Month(), d, h, min, sec, t.Nanosecond(), t.Location())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month, loc *time.Location) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysFromSeconds converts a second count into whole days for display,
// rounding to the nearest day so DST-shortened days still count as one.
func DaysFromSeconds(seconds int64) int64 {
	if seconds <= 0 {
		return 0
	}
	return (seconds + secondsPerDay/2) / secondsPerDay
}
