// Package returns stores portfolios, benchmarks and their month-end return series.
package returns

// Portfolio is a named investment portfolio
type Portfolio struct {
	ID   int64  `json:"id"`
	Name string `json:"portfolio_name"`
}

// Benchmark is a named reference index
type Benchmark struct {
	ID   int64  `json:"id"`
	Name string `json:"benchmark_name"`
}

// PortfolioReturn is one monthly observation of a portfolio
type PortfolioReturn struct {
	PortfolioID  int64   `json:"portfolio_id"`
	MonthEndDate string  `json:"month_end_date"`
	Return       float64 `json:"portfolio_return"`
}

// BenchmarkReturn is one monthly observation of a benchmark
type BenchmarkReturn struct {
	BenchmarkID  int64   `json:"benchmark_id"`
	MonthEndDate string  `json:"month_end_date"`
	Return       float64 `json:"benchmark_return"`
}

// DateRange filters return series by month_end_date, both bounds inclusive.
// Empty bounds are open.
type DateRange struct {
	Start string
	End   string
}

// Point is a single (date, value) observation
type Point struct {
	Date  string
	Value float64
}

// Series is an ascending-by-date sequence of observations
type Series []Point

// Values returns the observation values in date order
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}
