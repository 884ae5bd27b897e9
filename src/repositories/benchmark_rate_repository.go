package repositories

import (
	"context"
	"errors"
	"time"

	"assetsync/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BenchmarkRateRepository interface {
	GetByMonth(ctx context.Context, month time.Time) (*models.BenchmarkRate, error)
	GetRange(ctx context.Context, from, to time.Time) ([]models.BenchmarkRate, error)
}

type benchmarkRateRepo struct {
	db *pgxpool.Pool
}

func NewBenchmarkRateRepository(db *pgxpool.Pool) BenchmarkRateRepository {
	return &benchmarkRateRepo{db: db}
}

const benchmarkRateColumns = `id, month, benchmark_percentage, monthly_rate, monthly_percentage`

// GetByMonth returns the rate row for a first-of-month date, or nil when the
// table has no row for that month.
func (r *benchmarkRateRepo) GetByMonth(ctx context.Context, month time.Time) (*models.BenchmarkRate, error) {
	var b models.BenchmarkRate
	err := r.db.QueryRow(ctx,
		`SELECT `+benchmarkRateColumns+` FROM benchmark_rates WHERE month = $1`, month,
	).Scan(&b.ID, &b.Month, &b.BenchmarkPercentage, &b.MonthlyRate, &b.MonthlyPercentage)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *benchmarkRateRepo) GetRange(ctx context.Context, from, to time.Time) ([]models.BenchmarkRate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+benchmarkRateColumns+` FROM benchmark_rates
		 WHERE month >= $1 AND month <= $2 ORDER BY month`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []models.BenchmarkRate
	for rows.Next() {
		var b models.BenchmarkRate
		if err := rows.Scan(&b.ID, &b.Month, &b.BenchmarkPercentage, &b.MonthlyRate, &b.MonthlyPercentage); err != nil {
			return nil, err
		}
		rates = append(rates, b)
	}
	return rates, rows.Err()
}
