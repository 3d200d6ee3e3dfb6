package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recently answered questions",
	Long:  `List the audit log of answered questions, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if runService == nil {
		return errors.New("run service not configured")
	}

	runs, err := runService.Recent(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for i := range runs {
		r := &runs[i]
		cmd.Printf("%s  %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID)
		cmd.Printf("  Question: %s\n", r.Query)
		cmd.Printf("  Verdict:  %s after %d attempt(s), %d evidence, %.1fs\n",
			r.Verdict, r.Attempts, r.EvidenceCount, r.ElapsedSeconds)
		cmd.Println()
	}
	cmd.Printf("Total: %d runs\n", len(runs))
	return nil
}
