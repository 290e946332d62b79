package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used across the engine (inclusive
// dates, no time-of-day component).
const DateLayout = "2006-01-02"

// MonthLayout keys monthly aggregates.
const MonthLayout = "2006-01"

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", dateStr, err)
	}
	return t, nil
}

// MonthKey returns the YYYY-MM bucket key for a date.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// DaysBetween returns the number of calendar days in the inclusive range
// [start, end]. Both bounds are expected to be midnight-truncated.
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
