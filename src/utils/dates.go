package utils

import (
	"fmt"
	"time"
)

// MonthStart truncates a date to the first day of its calendar month, UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths moves a first-of-month date forward by n calendar months.
func AddMonths(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// GenerateMonths returns every first-of-month date from startDate's month up to
// and including endDate's month, in calendar order.
func GenerateMonths(startDate, endDate time.Time) ([]time.Time, error) {
	start := MonthStart(startDate)
	end := MonthStart(endDate)
	if end.Before(start) {
		return nil, fmt.Errorf("endDate must be after startDate")
	}

	var months []time.Time
	for current := start; !current.After(end); current = AddMonths(current, 1) {
		months = append(months, current)
	}

	return months, nil
}
