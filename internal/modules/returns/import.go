package returns

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Row kinds accepted by ImportCSV
const (
	KindPortfolio = "portfolio"
	KindBenchmark = "benchmark"
)

// ImportSummary counts what an import touched
type ImportSummary struct {
	Portfolios   int `json:"portfolios"`
	Benchmarks   int `json:"benchmarks"`
	Observations int `json:"observations"`
}

type importRow struct {
	kind  string
	name  string
	date  string
	value float64
}

// ImportCSV loads rows of kind,name,month_end_date,return into the store.
// A leading header row is skipped. The whole file is validated before anything is written.
func (r *Repository) ImportCSV(ctx context.Context, in io.Reader) (ImportSummary, error) {
	rows, err := parseImport(in)
	if err != nil {
		return ImportSummary{}, err
	}

	var summary ImportSummary
	portfolioIDs := make(map[string]int64)
	benchmarkIDs := make(map[string]int64)

	for _, row := range rows {
		switch row.kind {
		case KindPortfolio:
			id, ok := portfolioIDs[row.name]
			if !ok {
				if id, err = r.UpsertPortfolio(ctx, row.name); err != nil {
					return summary, err
				}
				portfolioIDs[row.name] = id
				summary.Portfolios++
			}
			if err := r.UpsertPortfolioReturn(ctx, id, row.date, row.value); err != nil {
				return summary, err
			}
		case KindBenchmark:
			id, ok := benchmarkIDs[row.name]
			if !ok {
				if id, err = r.UpsertBenchmark(ctx, row.name); err != nil {
					return summary, err
				}
				benchmarkIDs[row.name] = id
				summary.Benchmarks++
			}
			if err := r.UpsertBenchmarkReturn(ctx, id, row.date, row.value); err != nil {
				return summary, err
			}
		}
		summary.Observations++
	}

	r.log.Info().
		Int("portfolios", summary.Portfolios).
		Int("benchmarks", summary.Benchmarks).
		Int("observations", summary.Observations).
		Msg("Imported return series")

	return summary, nil
}

func parseImport(in io.Reader) ([]importRow, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	var rows []importRow
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "kind") {
			continue
		}

		row, err := parseImportRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseImportRecord(record []string) (importRow, error) {
	kind := strings.ToLower(strings.TrimSpace(record[0]))
	if kind != KindPortfolio && kind != KindBenchmark {
		return importRow{}, fmt.Errorf("unknown kind %q", record[0])
	}

	name := strings.TrimSpace(record[1])
	if name == "" {
		return importRow{}, fmt.Errorf("empty name")
	}

	date := strings.TrimSpace(record[2])
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return importRow{}, fmt.Errorf("invalid month_end_date %q: %w", date, err)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	if err != nil {
		return importRow{}, fmt.Errorf("invalid return %q: %w", record[3], err)
	}

	return importRow{kind: kind, name: name, date: date, value: value}, nil
}
