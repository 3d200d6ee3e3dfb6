package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the collection to MCP clients",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve the document collection over the Model Context Protocol.

Tools:      search, list_documents, ask (answers need a configured LLM)
Resources:  documents://list and documents://{id}

Without --port the server speaks JSON-RPC on stdio, which is what desktop
assistants launch. With --port it serves streamable HTTP instead.

  sercha-rag mcp serve
  sercha-rag mcp serve --port 8081

A client entry for stdio mode:
  {"mcpServers": {"sercha-rag": {"command": "sercha-rag", "args": ["mcp", "serve"]}}}`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve streamable HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Documents: documentService,
		Ask:       askService,
		Weights:   fusionWeights,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	startWatch(ctx)
	if mcpPort <= 0 {
		// stdout belongs to the protocol from here on.
		return server.Run(ctx)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost:%d\n", mcpPort)
	return server.RunHTTP(ctx, fmt.Sprintf(":%d", mcpPort))
}
