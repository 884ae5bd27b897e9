package models

import "time"

// BenchmarkRate holds the reference monthly rate for one calendar month.
// Month is always the first day of the month and unique across the table.
type BenchmarkRate struct {
	ID    int       `db:"id"`
	Month time.Time `db:"month"`

	// BenchmarkPercentage is the share of the benchmark applied, e.g. 100.
	BenchmarkPercentage float64 `db:"benchmark_percentage"`

	// MonthlyRate is the decimal factor, e.g. 0.0076 for 0.76% per month.
	MonthlyRate float64 `db:"monthly_rate"`

	// MonthlyPercentage is the benchmark's own percentage rate for the month.
	MonthlyPercentage float64 `db:"monthly_percentage"`
}
