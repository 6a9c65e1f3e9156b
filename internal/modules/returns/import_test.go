package returns

import (
	"context"
	"strings"
	"testing"

	testingpkg "github.com/aristath/perfagent/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCSV(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "performance")
	defer cleanup()
	repo := NewRepository(db.Conn(), zerolog.Nop())
	ctx := context.Background()

	input := `kind,name,month_end_date,return
portfolio,Growth Plus,2023-01-31,0.02
portfolio,Growth Plus,2023-02-28,-0.01
benchmark,MSCI World,2023-01-31,0.015
benchmark,MSCI World,2023-02-28,-0.008
`
	summary, err := repo.ImportCSV(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Portfolios: 1, Benchmarks: 1, Observations: 4}, summary)

	series, found, err := repo.PortfolioSeries(ctx, "Growth Plus", DateRange{})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []float64{0.02, -0.01}, series.Values())
}

func TestImportCSV_RejectsBadRowsBeforeWriting(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "performance")
	defer cleanup()
	repo := NewRepository(db.Conn(), zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown kind", "portfolio,A,2023-01-31,0.1\nfund,B,2023-01-31,0.1\n", "line 2: unknown kind"},
		{"bad date", "portfolio,A,2023-13-31,0.1\n", "invalid month_end_date"},
		{"bad value", "benchmark,A,2023-01-31,abc\n", "invalid return"},
		{"empty name", "portfolio, ,2023-01-31,0.1\n", "empty name"},
		{"wrong field count", "portfolio,A,2023-01-31\n", "failed to read CSV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.ImportCSV(ctx, strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	names, err := repo.PortfolioNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}
