package testing

import (
	"database/sql"
	"fmt"

	"github.com/aristath/perfagent/internal/database"
)

// Fixture month-end dates shared by every fixture series
var FixtureDates = []string{
	"2023-01-31",
	"2023-02-28",
	"2023-03-31",
	"2023-04-30",
	"2023-05-31",
	"2023-06-30",
}

// Fixture portfolio series, keyed by portfolio name
var FixturePortfolioReturns = map[string][]float64{
	"Growth Plus":   {0.02, -0.01, 0.03, 0.015, -0.005, 0.025},
	"Secure Income": {0.003, 0.003, 0.004, 0.003, 0.004, 0.003},
	// Shorter history: only the first quarter
	"Global Dividend": {0.01, 0.005, -0.002},
}

// Fixture benchmark series, keyed by benchmark name
var FixtureBenchmarkReturns = map[string][]float64{
	"MSCI World":              {0.015, -0.008, 0.02, 0.01, -0.002, 0.018},
	"Secure Income Benchmark": {0.002, 0.003, 0.003, 0.003, 0.004, 0.002},
}

// Insertion order of fixture entities (ids are assigned 1..n in this order)
var (
	FixturePortfolioNames = []string{"Growth Plus", "Global Dividend", "Secure Income"}
	FixtureBenchmarkNames = []string{"MSCI World", "Secure Income Benchmark"}
)

// SeedPerformanceFixtures inserts the fixture portfolios, benchmarks and
// their return series into a migrated performance database.
func SeedPerformanceFixtures(db *database.DB) error {
	return database.WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		for _, name := range FixturePortfolioNames {
			res, err := tx.Exec(`INSERT INTO portfolios (portfolio_name) VALUES (?)`, name)
			if err != nil {
				return fmt.Errorf("failed to insert portfolio %s: %w", name, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			for i, value := range FixturePortfolioReturns[name] {
				if _, err := tx.Exec(
					`INSERT INTO portfolio_returns (portfolio_id, month_end_date, portfolio_return) VALUES (?, ?, ?)`,
					id, FixtureDates[i], value,
				); err != nil {
					return fmt.Errorf("failed to insert portfolio return for %s: %w", name, err)
				}
			}
		}

		for _, name := range FixtureBenchmarkNames {
			res, err := tx.Exec(`INSERT INTO benchmarks (benchmark_name) VALUES (?)`, name)
			if err != nil {
				return fmt.Errorf("failed to insert benchmark %s: %w", name, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			for i, value := range FixtureBenchmarkReturns[name] {
				if _, err := tx.Exec(
					`INSERT INTO benchmark_returns (benchmark_id, month_end_date, benchmark_return) VALUES (?, ?, ?)`,
					id, FixtureDates[i], value,
				); err != nil {
					return fmt.Errorf("failed to insert benchmark return for %s: %w", name, err)
				}
			}
		}
		return nil
	})
}
