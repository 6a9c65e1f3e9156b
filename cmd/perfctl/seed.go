package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/aristath/perfagent/internal/database"
	"github.com/aristath/perfagent/internal/modules/returns"
	"github.com/aristath/perfagent/pkg/logger"
	"github.com/google/subcommands"
)

type seedCmd struct {
	db string
}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "loads monthly returns from a CSV file into the store" }
func (*seedCmd) Usage() string {
	return `perfctl seed [-db <database_file>] <returns.csv>

  Reads rows of kind,name,month_end_date,return where kind is "portfolio" or
  "benchmark". A header row is optional. Existing observations for the same
  entity and month are replaced. Use "-" to read from stdin.
`
}

func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", envOr("DATABASE_PATH", "./data/performance.db"), "path to the performance database")
}

func (c *seedCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one CSV file is required.")
		return subcommands.ExitUsageError
	}

	var in io.Reader = os.Stdin
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", name, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		in = file
	}

	summary, err := seed(ctx, c.db, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Imported %d observations (%d portfolios, %d benchmarks) into %s\n",
		summary.Observations, summary.Portfolios, summary.Benchmarks, c.db)
	return subcommands.ExitSuccess
}

// seed opens (and migrates) the database at path and imports the CSV rows
func seed(ctx context.Context, path string, in io.Reader) (returns.ImportSummary, error) {
	db, err := database.New(database.Config{
		Path:    path,
		Profile: database.ProfileStandard,
		Name:    "performance",
	})
	if err != nil {
		return returns.ImportSummary{}, err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return returns.ImportSummary{}, err
	}

	log := logger.New(logger.Config{Level: "warn", Pretty: true, Output: os.Stderr})
	return returns.NewRepository(db.Conn(), log).ImportCSV(ctx, in)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
