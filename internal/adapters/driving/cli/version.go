package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sercha-rag version",
	// Overrides the root hook: printing the version needs no storage or providers.
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("sercha-rag version %s\n", version)
		if verbose {
			cmd.Printf("%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
