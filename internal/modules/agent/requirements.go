package agent

import "github.com/aristath/perfagent/internal/domain"

var metricRequirements = map[string][]string{
	domain.MetricVolatility:       {FieldPortfolioName, FieldStartDate, FieldEndDate},
	domain.MetricBeta:             {FieldPortfolioName, FieldBenchmarkName, FieldStartDate, FieldEndDate},
	domain.MetricSharpeRatio:      {FieldPortfolioName, FieldRiskFreePortfolioName, FieldStartDate, FieldEndDate},
	domain.MetricTrackingError:    {FieldPortfolioName, FieldBenchmarkName, FieldStartDate, FieldEndDate},
	domain.MetricInformationRatio: {FieldPortfolioName, FieldBenchmarkName, FieldStartDate, FieldEndDate},
}

// RequirementsFor returns the fields metric needs, in a fixed order.
// Unknown metrics need nothing here; the analytics backend rejects them.
func RequirementsFor(metric string) []string {
	return append([]string(nil), metricRequirements[metric]...)
}
