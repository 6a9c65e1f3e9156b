package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/perfagent/internal/domain"
	"github.com/rs/zerolog"
)

// Oracle is a stateless language model answering one prompt pair per call
type Oracle interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ChatTurn is one prior message of the conversation
type ChatTurn struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// DefaultOracleTimeout bounds a single extraction call
const DefaultOracleTimeout = 60 * time.Second

const extractionSystemPrompt = "You are a helpful assistant that extracts structured parameters from user requests."

const extractionTemplate = `You parse user requests for investment analytics calculations.
Extract these parameters from the conversation:
- portfolio_name: name of the portfolio
- benchmark_name: name of the benchmark
- risk_free_portfolio_name: name of the risk-free portfolio
- start_date: start date as YYYY-MM-DD (month end preferred)
- end_date: end date as YYYY-MM-DD (month end preferred)
- metrics: list of metrics to compute, chosen from [%s]

Set any parameter that is not mentioned to null.
Reply with a single JSON object containing exactly these keys and nothing else.

Conversation history:
%s

Current user message: %s
`

var errInvalidReply = errors.New("invalid oracle reply")

// Extractor converts conversation text into a ParameterRecord via an Oracle
type Extractor struct {
	oracle  Oracle
	timeout time.Duration
	log     zerolog.Logger
}

// NewExtractor creates a new extractor. A non-positive timeout selects DefaultOracleTimeout.
func NewExtractor(oracle Oracle, timeout time.Duration, log zerolog.Logger) *Extractor {
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	return &Extractor{
		oracle:  oracle,
		timeout: timeout,
		log:     log.With().Str("component", "extractor").Logger(),
	}
}

// Extract asks the oracle for the parameters mentioned in the conversation.
// It never fails: any oracle or parsing problem yields an all-null record.
func (e *Extractor) Extract(ctx context.Context, message string, history []ChatTurn) ParameterRecord {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reply, err := e.oracle.Complete(ctx, extractionSystemPrompt, BuildExtractionPrompt(message, history))
	if err != nil {
		e.log.Warn().Err(err).Msg("Oracle call failed, continuing with empty parameters")
		return ParameterRecord{}
	}

	params, err := ParseExtraction(reply)
	if err != nil {
		e.log.Warn().Err(err).Str("reply", truncate(reply, 200)).Msg("Unusable oracle reply, continuing with empty parameters")
		return ParameterRecord{}
	}

	e.log.Debug().
		Str("portfolio", deref(params.PortfolioName)).
		Str("benchmark", deref(params.BenchmarkName)).
		Strs("metrics", params.Metrics).
		Msg("Extracted parameters")

	return params
}

// BuildExtractionPrompt renders the instruction template with the full transcript
func BuildExtractionPrompt(message string, history []ChatTurn) string {
	lines := make([]string, len(history))
	for i, turn := range history {
		lines[i] = turn.Role + ": " + turn.Content
	}

	vocabulary := make([]string, len(domain.AllMetrics))
	for i, m := range domain.AllMetrics {
		vocabulary[i] = `"` + m + `"`
	}

	return fmt.Sprintf(extractionTemplate, strings.Join(vocabulary, ", "), strings.Join(lines, "\n"), message)
}

// ParseExtraction decodes a strict oracle reply: exactly one JSON object,
// no keys beyond the six parameters, strings or null for names and dates,
// and an array of known metric identifiers (or null) for metrics.
// Absent keys are treated as null.
func ParseExtraction(reply string) (ParameterRecord, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &raw); err != nil {
		return ParameterRecord{}, fmt.Errorf("%w: %v", errInvalidReply, err)
	}
	if raw == nil {
		return ParameterRecord{}, fmt.Errorf("%w: not a JSON object", errInvalidReply)
	}

	var params ParameterRecord
	targets := map[string]**string{
		FieldPortfolioName:         &params.PortfolioName,
		FieldBenchmarkName:         &params.BenchmarkName,
		FieldRiskFreePortfolioName: &params.RiskFreePortfolioName,
		FieldStartDate:             &params.StartDate,
		FieldEndDate:               &params.EndDate,
	}

	for key, value := range raw {
		if key == FieldMetrics {
			metrics, err := parseMetrics(value)
			if err != nil {
				return ParameterRecord{}, err
			}
			params.Metrics = metrics
			continue
		}

		target, ok := targets[key]
		if !ok {
			return ParameterRecord{}, fmt.Errorf("%w: unexpected key %q", errInvalidReply, key)
		}
		if isNull(value) {
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return ParameterRecord{}, fmt.Errorf("%w: %s must be a string or null", errInvalidReply, key)
		}
		*target = &s
	}

	return params.Normalized(), nil
}

func parseMetrics(value json.RawMessage) ([]string, error) {
	if isNull(value) {
		return nil, nil
	}
	var metrics []string
	if err := json.Unmarshal(value, &metrics); err != nil {
		return nil, fmt.Errorf("%w: metrics must be an array of strings or null", errInvalidReply)
	}
	for _, m := range metrics {
		if !domain.IsKnownMetric(strings.TrimSpace(m)) {
			return nil, fmt.Errorf("%w: unknown metric %q", errInvalidReply, m)
		}
	}
	return metrics, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
