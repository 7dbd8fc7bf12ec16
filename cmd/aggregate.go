package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newAggregateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate",
		Short: "Runs one aggregation pass and prints its report",
		Long: `Fetches every enabled provider once, upserts the results and writes the
pass report as JSON to stdout. Exits non-zero when every provider failed.`,
		RunE: runAggregate,
	}
}

func runAggregate(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	report, runErr := a.Runner.Run(cmd.Context())
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return runErr
}
