package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/aristath/perfagent/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultAnalyticsTimeout bounds a single analytics backend call
const DefaultAnalyticsTimeout = 30 * time.Second

// Composition is the outcome of one composed turn
type Composition struct {
	Text string
	// Report is set only after a successful computation
	Report *domain.AnalyticsReport
	// ResetHistory tells the caller to clear its conversation history
	ResetHistory bool
}

// Composer turns checked parameters into a clarification or a computed answer
type Composer struct {
	backend domain.AnalyticsBackend
	timeout time.Duration
	log     zerolog.Logger
}

// NewComposer creates a new composer. A non-positive timeout selects DefaultAnalyticsTimeout.
func NewComposer(backend domain.AnalyticsBackend, timeout time.Duration, log zerolog.Logger) *Composer {
	if timeout <= 0 {
		timeout = DefaultAnalyticsTimeout
	}
	return &Composer{
		backend: backend,
		timeout: timeout,
		log:     log.With().Str("component", "composer").Logger(),
	}
}

// Compose asks for the missing fields, or computes the metrics when nothing is missing
func (c *Composer) Compose(ctx context.Context, params ParameterRecord, missing, portfolios, benchmarks []string) Composition {
	if len(missing) > 0 {
		return Composition{Text: c.clarification(params, missing, portfolios, benchmarks)}
	}
	return c.compute(ctx, params)
}

// suggestionTargets lists the name fields that get suggestions, in reply order
var suggestionTargets = []struct {
	field     string
	noun      string
	available string
	benchmark bool
}{
	{FieldPortfolioName, "portfolios", "portfolios", false},
	{FieldBenchmarkName, "benchmarks", "benchmarks", true},
	{FieldRiskFreePortfolioName, "risk-free portfolios", "portfolios", false},
}

func (c *Composer) clarification(params ParameterRecord, missing, portfolios, benchmarks []string) string {
	labels := make([]string, len(missing))
	for i, field := range missing {
		labels[i] = c.humanize(field)
	}

	var b strings.Builder
	b.WriteString("I need the following information to compute: ")
	b.WriteString(strings.Join(labels, ", "))
	b.WriteString(". ")

	for _, target := range suggestionTargets {
		value := params.Value(target.field)
		if value == nil || !slices.Contains(missing, target.field) {
			continue
		}
		catalog := portfolios
		if target.benchmark {
			catalog = benchmarks
		}
		if suggestions := Suggest(*value, catalog); len(suggestions) > 0 {
			fmt.Fprintf(&b, "Did you mean one of these %s: %s? ", target.noun, strings.Join(suggestions, ", "))
		} else {
			fmt.Fprintf(&b, "Available %s: %s. ", target.available, strings.Join(catalog, ", "))
		}
	}

	return strings.TrimSpace(b.String())
}

func (c *Composer) compute(ctx context.Context, params ParameterRecord) Composition {
	query := domain.AnalyticsQuery{
		PortfolioName:         deref(params.PortfolioName),
		BenchmarkName:         deref(params.BenchmarkName),
		RiskFreePortfolioName: deref(params.RiskFreePortfolioName),
		Metrics:               params.Metrics,
	}

	for _, d := range []struct {
		field  string
		value  *string
		target *string
	}{
		{FieldStartDate, params.StartDate, &query.StartDate},
		{FieldEndDate, params.EndDate, &query.EndDate},
	} {
		if d.value == nil {
			continue
		}
		normalized, err := NormalizeDate(*d.value)
		if err != nil {
			return Composition{Text: fmt.Sprintf("Error: invalid %s %q (expected YYYY-MM-DD)", d.field, *d.value)}
		}
		*d.target = normalized
	}

	// The request deadline may leave less than the configured timeout
	budget, limitedByRequest := c.timeout, false
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < budget {
			budget, limitedByRequest = max(remaining, 0), true
		}
	}

	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	report, err := c.backend.Compute(ctx, query)
	if err != nil {
		var backendErr *domain.BackendError
		switch {
		case errors.As(err, &backendErr):
			c.log.Warn().Int("status", backendErr.StatusCode).Msg("Analytics backend rejected request")
			return Composition{Text: "Error computing analytics: " + backendErr.Body}
		case errors.Is(err, context.DeadlineExceeded):
			budget = budget.Round(time.Millisecond)
			c.log.Warn().Dur("timeout", budget).Bool("request_deadline", limitedByRequest).Msg("Analytics backend timed out")
			if limitedByRequest {
				return Composition{Text: fmt.Sprintf("Error: analytics backend timed out after %s (request deadline reached)", budget)}
			}
			return Composition{Text: fmt.Sprintf("Error: analytics backend timed out after %s", budget)}
		default:
			c.log.Warn().Err(err).Msg("Analytics computation failed")
			return Composition{Text: "Error: " + err.Error()}
		}
	}
	if report == nil {
		return Composition{Text: "Error: analytics backend returned no results"}
	}

	return Composition{
		Text:         c.renderResults(params.Metrics, report.Results),
		Report:       report,
		ResetHistory: true,
	}
}

// renderResults writes one sentence per metric: requested metrics in request
// order, then any other result keys sorted.
func (c *Composer) renderResults(requested []string, results map[string]any) string {
	order := make([]string, 0, len(results))
	for _, m := range requested {
		if _, ok := results[m]; ok && !slices.Contains(order, m) {
			order = append(order, m)
		}
	}
	var extra []string
	for k := range results {
		if !slices.Contains(order, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	sentences := make([]string, len(order))
	for i, metric := range order {
		sentences[i] = c.humanize(metric) + " is " + formatValue(results[metric])
	}
	return strings.Join(sentences, "; ")
}

// humanize turns a field name into title case words. Casers are stateful, so
// one is created per call.
func (c *Composer) humanize(field string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(field, "_", " "))
}

// formatValue renders finite numbers with six decimals and anything else as-is.
// Rounding is half-to-even on the exact binary value, matching %.6f.
func formatValue(v any) string {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return n.String()
		}
		f = parsed
	default:
		return fmt.Sprint(v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprint(f)
	}
	s := exactDecimal(f).StringFixedBank(6)
	if math.Signbit(f) && !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s
}

// exactDecimal returns the exact decimal expansion of a finite float64.
// decimal.NewFromFloat keeps only the shortest round-tripping digits.
func exactDecimal(f float64) decimal.Decimal {
	frac, exp := math.Frexp(f)
	mant := big.NewInt(int64(frac * (1 << 53)))
	exp -= 53
	if exp >= 0 {
		return decimal.NewFromBigInt(mant.Lsh(mant, uint(exp)), 0)
	}
	// mant * 2^exp == mant * 5^-exp * 10^exp
	five := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-exp)), nil)
	return decimal.NewFromBigInt(mant.Mul(mant, five), int32(exp))
}
