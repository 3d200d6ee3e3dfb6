// Package cli provides the cobra command tree for sercha-rag.
package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services used by the commands. They are wired on first use, or injected
// by tests through setServices.
var (
	settingsService driving.SettingsService
	documentService driving.DocumentService
	askService      driving.AskService
	runService      driving.RunService
	summariser      httpapi.Summariser
	knowledgeLoader *services.KnowledgeLoader
	fusionWeights   = domain.DefaultFusionWeights()
	serverPort      = domain.DefaultPort
	watchKnowledge  bool
)

// Wiring state.
var (
	servicesReady bool
	settingsReady bool
	releaseFuncs  []func()
)

// Persistent flags.
var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Question answering over your documents",
	Long: `sercha-rag answers questions from a collection of text documents.

An agentic loop plans retrieval, searches the documents lexically and
semantically, judges its own draft answers and retries until the answer
is supported by evidence.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Configuration directory (default ~/.sercha-rag)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. Wired resources are released on return.
func Execute(ctx context.Context) error {
	defer release()
	return rootCmd.ExecuteContext(ctx)
}

// preRunServices wires every service a command may need.
func preRunServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	loadDotEnv()
	return wireServices(cmd.Context())
}

// preRunSettings wires only the settings service, so a broken provider
// configuration can still be fixed.
func preRunSettings(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	loadDotEnv()
	return wireSettings()
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded: %v", err)
	}
}

// release closes wired resources in reverse order.
func release() {
	for i := len(releaseFuncs) - 1; i >= 0; i-- {
		releaseFuncs[i]()
	}
	releaseFuncs = nil
}

func onRelease(fn func()) {
	releaseFuncs = append(releaseFuncs, fn)
}
