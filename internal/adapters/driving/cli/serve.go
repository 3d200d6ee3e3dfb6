package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/httpapi"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API for document management, search and question answering.

The port defaults to the server.port setting (8000). When knowledge.watch
is enabled, changes to the knowledge directory are applied while serving.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ports := &httpapi.Ports{
		Documents:  documentService,
		Ask:        askService,
		Runs:       runService,
		Summariser: summariser,
	}

	server, err := httpapi.NewServer(ports)
	if err != nil {
		return err
	}

	port := servePort
	if port <= 0 {
		port = serverPort
	}
	addr := fmt.Sprintf(":%d", port)

	startWatch(cmd.Context())
	cmd.Printf("HTTP API listening on http://localhost%s\n", addr)
	return server.Run(cmd.Context(), addr)
}
