package agent

import "slices"

// Check returns the fields that still block computation, deduplicated in
// first-seen order: required fields absent for each requested metric,
// "metrics" when none were requested, and every supplied name that is not
// in its catalog (risk-free portfolios resolve against portfolios).
func Check(params ParameterRecord, portfolios, benchmarks []string) []string {
	missing := make([]string, 0, 4)
	add := func(field string) {
		if !slices.Contains(missing, field) {
			missing = append(missing, field)
		}
	}

	for _, metric := range params.Metrics {
		for _, field := range RequirementsFor(metric) {
			if !params.Has(field) {
				add(field)
			}
		}
	}

	if len(params.Metrics) == 0 {
		add(FieldMetrics)
	}

	// A supplied but unknown name blocks even when no metric needs it
	if params.PortfolioName != nil && !slices.Contains(portfolios, *params.PortfolioName) {
		add(FieldPortfolioName)
	}
	if params.BenchmarkName != nil && !slices.Contains(benchmarks, *params.BenchmarkName) {
		add(FieldBenchmarkName)
	}
	if params.RiskFreePortfolioName != nil && !slices.Contains(portfolios, *params.RiskFreePortfolioName) {
		add(FieldRiskFreePortfolioName)
	}

	return missing
}
