// Package formulas provides the closed-form ex-post performance statistics.
package formulas

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInsufficientData is returned when a series is too short for an
	// n-1 denominator.
	ErrInsufficientData = errors.New("at least 2 observations are required")
	// ErrLengthMismatch is returned when paired series differ in length.
	// Series are never truncated to fit.
	ErrLengthMismatch = errors.New("series lengths do not match")
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// Volatility is the sample standard deviation (n-1) of realized returns.
func Volatility(returns []float64) (float64, error) {
	if len(returns) < 2 {
		return 0, fmt.Errorf("volatility: %w (got %d)", ErrInsufficientData, len(returns))
	}
	return stat.StdDev(returns, nil), nil
}

// Beta is the sample covariance of portfolio and benchmark returns divided by
// the sample variance of the benchmark.
func Beta(portfolioReturns, benchmarkReturns []float64) (float64, error) {
	if err := checkPaired("beta", portfolioReturns, benchmarkReturns); err != nil {
		return 0, err
	}
	cov := stat.Covariance(portfolioReturns, benchmarkReturns, nil)
	return cov / stat.Variance(benchmarkReturns, nil), nil
}

// SharpeRatio is the mean excess return over riskFreeReturn per unit of
// total volatility.
func SharpeRatio(returns []float64, riskFreeReturn float64) (float64, error) {
	vol, err := Volatility(returns)
	if err != nil {
		return 0, fmt.Errorf("sharpe ratio: %w", err)
	}
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - riskFreeReturn
	}
	return stat.Mean(excess, nil) / vol, nil
}

// TrackingError is the sample standard deviation of active returns.
func TrackingError(portfolioReturns, benchmarkReturns []float64) (float64, error) {
	active, err := ActiveReturns(portfolioReturns, benchmarkReturns)
	if err != nil {
		return 0, fmt.Errorf("tracking error: %w", err)
	}
	return stat.StdDev(active, nil), nil
}

// InformationRatio is the mean active return per unit of tracking error.
func InformationRatio(portfolioReturns, benchmarkReturns []float64) (float64, error) {
	active, err := ActiveReturns(portfolioReturns, benchmarkReturns)
	if err != nil {
		return 0, fmt.Errorf("information ratio: %w", err)
	}
	return stat.Mean(active, nil) / stat.StdDev(active, nil), nil
}

// ActiveReturns returns portfolio minus benchmark, period by period.
func ActiveReturns(portfolioReturns, benchmarkReturns []float64) ([]float64, error) {
	if err := checkPaired("active returns", portfolioReturns, benchmarkReturns); err != nil {
		return nil, err
	}
	active := make([]float64, len(portfolioReturns))
	for i := range portfolioReturns {
		active[i] = portfolioReturns[i] - benchmarkReturns[i]
	}
	return active, nil
}

func checkPaired(name string, a, b []float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("%s: %w (%d vs %d)", name, ErrLengthMismatch, len(a), len(b))
	}
	if len(a) < 2 {
		return fmt.Errorf("%s: %w (got %d)", name, ErrInsufficientData, len(a))
	}
	return nil
}
