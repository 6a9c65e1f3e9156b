package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/aristath/perfagent/internal/domain"
	"github.com/google/subcommands"
)

type metricsCmd struct {
	asJSON bool
}

func (*metricsCmd) Name() string     { return "metrics" }
func (*metricsCmd) Synopsis() string { return "lists the metrics the agent can compute" }
func (*metricsCmd) Usage() string {
	return `perfctl metrics [-json]

  Prints every metric identifier with its description.
`
}

func (c *metricsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.asJSON, "json", false, "print the catalog as JSON")
}

func (c *metricsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := printMetrics(os.Stdout, c.asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printMetrics(w io.Writer, asJSON bool) error {
	catalog := domain.MetricCatalog()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog)
	}

	width := 0
	for _, m := range catalog {
		width = max(width, len(m.Name))
	}
	for _, m := range catalog {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, m.Name, m.Description); err != nil {
			return err
		}
	}
	return nil
}
