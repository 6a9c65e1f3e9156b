package returns

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// entityTable describes one entity table and its return series table.
// Portfolios and benchmarks share the same shape.
type entityTable struct {
	table       string
	nameColumn  string
	seriesTable string
	idColumn    string
	valueColumn string
}

var (
	portfolioTable = entityTable{
		table:       "portfolios",
		nameColumn:  "portfolio_name",
		seriesTable: "portfolio_returns",
		idColumn:    "portfolio_id",
		valueColumn: "portfolio_return",
	}
	benchmarkTable = entityTable{
		table:       "benchmarks",
		nameColumn:  "benchmark_name",
		seriesTable: "benchmark_returns",
		idColumn:    "benchmark_id",
		valueColumn: "benchmark_return",
	}
)

type entity struct {
	id   int64
	name string
}

type observation struct {
	id    int64
	date  string
	value float64
}

// Repository handles portfolio and benchmark database operations
type Repository struct {
	db  *sql.DB // performance.db
	log zerolog.Logger
}

// NewRepository creates a new returns repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "returns").Logger(),
	}
}

// ListPortfolios returns all portfolios ordered by id
func (r *Repository) ListPortfolios(ctx context.Context) ([]Portfolio, error) {
	entities, err := r.list(ctx, portfolioTable)
	if err != nil {
		return nil, err
	}
	portfolios := make([]Portfolio, len(entities))
	for i, e := range entities {
		portfolios[i] = Portfolio{ID: e.id, Name: e.name}
	}
	return portfolios, nil
}

// GetPortfolio returns a portfolio by id, or nil if it does not exist
func (r *Repository) GetPortfolio(ctx context.Context, id int64) (*Portfolio, error) {
	e, err := r.getByID(ctx, portfolioTable, id)
	if err != nil || e == nil {
		return nil, err
	}
	return &Portfolio{ID: e.id, Name: e.name}, nil
}

// FindPortfolioByName returns a portfolio by exact name, or nil if it does not exist
func (r *Repository) FindPortfolioByName(ctx context.Context, name string) (*Portfolio, error) {
	e, err := r.getByName(ctx, portfolioTable, name)
	if err != nil || e == nil {
		return nil, err
	}
	return &Portfolio{ID: e.id, Name: e.name}, nil
}

// UpsertPortfolio inserts a portfolio if missing and returns its id
func (r *Repository) UpsertPortfolio(ctx context.Context, name string) (int64, error) {
	return r.upsertEntity(ctx, portfolioTable, name)
}

// GetPortfolioReturns returns a portfolio's observations in ascending date order
func (r *Repository) GetPortfolioReturns(ctx context.Context, portfolioID int64, dr DateRange) ([]PortfolioReturn, error) {
	rows, err := r.series(ctx, portfolioTable, portfolioID, dr)
	if err != nil {
		return nil, err
	}
	result := make([]PortfolioReturn, len(rows))
	for i, o := range rows {
		result[i] = PortfolioReturn{PortfolioID: o.id, MonthEndDate: o.date, Return: o.value}
	}
	return result, nil
}

// UpsertPortfolioReturn stores one monthly portfolio return, replacing any existing value
func (r *Repository) UpsertPortfolioReturn(ctx context.Context, portfolioID int64, monthEndDate string, value float64) error {
	return r.upsertObservation(ctx, portfolioTable, portfolioID, monthEndDate, value)
}

// ListBenchmarks returns all benchmarks ordered by id
func (r *Repository) ListBenchmarks(ctx context.Context) ([]Benchmark, error) {
	entities, err := r.list(ctx, benchmarkTable)
	if err != nil {
		return nil, err
	}
	benchmarks := make([]Benchmark, len(entities))
	for i, e := range entities {
		benchmarks[i] = Benchmark{ID: e.id, Name: e.name}
	}
	return benchmarks, nil
}

// GetBenchmark returns a benchmark by id, or nil if it does not exist
func (r *Repository) GetBenchmark(ctx context.Context, id int64) (*Benchmark, error) {
	e, err := r.getByID(ctx, benchmarkTable, id)
	if err != nil || e == nil {
		return nil, err
	}
	return &Benchmark{ID: e.id, Name: e.name}, nil
}

// FindBenchmarkByName returns a benchmark by exact name, or nil if it does not exist
func (r *Repository) FindBenchmarkByName(ctx context.Context, name string) (*Benchmark, error) {
	e, err := r.getByName(ctx, benchmarkTable, name)
	if err != nil || e == nil {
		return nil, err
	}
	return &Benchmark{ID: e.id, Name: e.name}, nil
}

// UpsertBenchmark inserts a benchmark if missing and returns its id
func (r *Repository) UpsertBenchmark(ctx context.Context, name string) (int64, error) {
	return r.upsertEntity(ctx, benchmarkTable, name)
}

// GetBenchmarkReturns returns a benchmark's observations in ascending date order
func (r *Repository) GetBenchmarkReturns(ctx context.Context, benchmarkID int64, dr DateRange) ([]BenchmarkReturn, error) {
	rows, err := r.series(ctx, benchmarkTable, benchmarkID, dr)
	if err != nil {
		return nil, err
	}
	result := make([]BenchmarkReturn, len(rows))
	for i, o := range rows {
		result[i] = BenchmarkReturn{BenchmarkID: o.id, MonthEndDate: o.date, Return: o.value}
	}
	return result, nil
}

// UpsertBenchmarkReturn stores one monthly benchmark return, replacing any existing value
func (r *Repository) UpsertBenchmarkReturn(ctx context.Context, benchmarkID int64, monthEndDate string, value float64) error {
	return r.upsertObservation(ctx, benchmarkTable, benchmarkID, monthEndDate, value)
}

// PortfolioSeries returns the named portfolio's series. found is false for unknown names.
func (r *Repository) PortfolioSeries(ctx context.Context, name string, dr DateRange) (series Series, found bool, err error) {
	return r.seriesByName(ctx, portfolioTable, name, dr)
}

// BenchmarkSeries returns the named benchmark's series. found is false for unknown names.
func (r *Repository) BenchmarkSeries(ctx context.Context, name string, dr DateRange) (series Series, found bool, err error) {
	return r.seriesByName(ctx, benchmarkTable, name, dr)
}

// PortfolioNames returns all portfolio names ordered by id
func (r *Repository) PortfolioNames(ctx context.Context) ([]string, error) {
	return r.names(ctx, portfolioTable)
}

// BenchmarkNames returns all benchmark names ordered by id
func (r *Repository) BenchmarkNames(ctx context.Context) ([]string, error) {
	return r.names(ctx, benchmarkTable)
}

func (r *Repository) list(ctx context.Context, t entityTable) ([]entity, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY id", t.nameColumn, t.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.table, err)
	}
	defer rows.Close()

	var entities []entity
	for rows.Next() {
		var e entity
		if err := rows.Scan(&e.id, &e.name); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.table, err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", t.table, err)
	}
	return entities, nil
}

func (r *Repository) names(ctx context.Context, t entityTable) ([]string, error) {
	entities, err := r.list(ctx, t)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.name
	}
	return names, nil
}

func (r *Repository) getByID(ctx context.Context, t entityTable, id int64) (*entity, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE id = ?", t.nameColumn, t.table)
	return r.scanOne(ctx, t, query, id)
}

func (r *Repository) getByName(ctx context.Context, t entityTable, name string) (*entity, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE %s = ?", t.nameColumn, t.table, t.nameColumn)
	return r.scanOne(ctx, t, query, name)
}

func (r *Repository) scanOne(ctx context.Context, t entityTable, query string, arg any) (*entity, error) {
	var e entity
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&e.id, &e.name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.table, err)
	}
	return &e, nil
}

func (r *Repository) upsertEntity(ctx context.Context, t entityTable, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%s requires a non-empty name", t.table)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?) ON CONFLICT(%s) DO NOTHING", t.table, t.nameColumn, t.nameColumn)
	if _, err := r.db.ExecContext(ctx, insert, name); err != nil {
		return 0, fmt.Errorf("failed to upsert %s %q: %w", t.table, name, err)
	}

	e, err := r.getByName(ctx, t, name)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, fmt.Errorf("%s %q missing after upsert", t.table, name)
	}
	return e.id, nil
}

func (r *Repository) series(ctx context.Context, t entityTable, id int64, dr DateRange) ([]observation, error) {
	query := fmt.Sprintf("SELECT %s, month_end_date, %s FROM %s WHERE %s = ?",
		t.idColumn, t.valueColumn, t.seriesTable, t.idColumn)
	args := []any{id}
	if dr.Start != "" {
		query += " AND month_end_date >= ?"
		args = append(args, dr.Start)
	}
	if dr.End != "" {
		query += " AND month_end_date <= ?"
		args = append(args, dr.End)
	}
	query += " ORDER BY month_end_date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.seriesTable, err)
	}
	defer rows.Close()

	var result []observation
	for rows.Next() {
		var o observation
		if err := rows.Scan(&o.id, &o.date, &o.value); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.seriesTable, err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", t.seriesTable, err)
	}
	return result, nil
}

func (r *Repository) seriesByName(ctx context.Context, t entityTable, name string, dr DateRange) (Series, bool, error) {
	e, err := r.getByName(ctx, t, name)
	if err != nil {
		return nil, false, err
	}
	if e == nil {
		return nil, false, nil
	}

	rows, err := r.series(ctx, t, e.id, dr)
	if err != nil {
		return nil, true, err
	}
	series := make(Series, len(rows))
	for i, o := range rows {
		series[i] = Point{Date: o.date, Value: o.value}
	}
	return series, true, nil
}

func (r *Repository) upsertObservation(ctx context.Context, t entityTable, id int64, monthEndDate string, value float64) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, month_end_date, %s) VALUES (?, ?, ?)
		ON CONFLICT(%s, month_end_date) DO UPDATE SET %s = excluded.%s`,
		t.seriesTable, t.idColumn, t.valueColumn, t.idColumn, t.valueColumn, t.valueColumn)

	if _, err := r.db.ExecContext(ctx, query, id, monthEndDate, value); err != nil {
		return fmt.Errorf("failed to upsert %s for id %d on %s: %w", t.seriesTable, id, monthEndDate, err)
	}
	return nil
}
