package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage documents",
	Long:  `Add, list, view or remove documents in the collection.`,
}

var documentAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Add a document from a file",
	Long: `Add a document from a text, markdown, HTML or PDF file.

The document ID defaults to the file name with dots replaced by
underscores, and the name defaults to the file name. Adding a document
with an existing ID replaces it.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentAdd,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show a document and its content",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove [doc-id]",
	Short: "Remove a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRemove,
}

// Flags for the add command.
var (
	addDocID       string
	addDocName     string
	addDescription string
)

func init() {
	documentAddCmd.Flags().StringVar(&addDocID, "id", "", "Document ID (default derived from the file name)")
	documentAddCmd.Flags().StringVar(&addDocName, "name", "", "Document name (default the file name)")
	documentAddCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Short description used to pick documents")

	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentRemoveCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentAdd(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	path := args[0]
	content, err := readDocumentFile(cmd.Context(), path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	req := driving.AddDocumentRequest{
		ID:          addDocID,
		Name:        addDocName,
		Description: addDescription,
		Content:     content,
	}
	if req.ID == "" {
		req.ID = domain.DocIDForName(name)
	}
	if req.Name == "" {
		req.Name = name
	}
	if req.Description == "" {
		req.Description = domain.TitleForName(name)
	}

	summary, err := documentService.Add(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	cmd.Printf("Added document %s (%d chunks)\n", summary.ID, summary.ChunkCount)
	return nil
}

// readDocumentFile extracts the text of a file with the normaliser for
// its MIME type.
func readDocumentFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	name := filepath.Base(path)
	mimeType := domain.MIMETypeForName(name)
	if mimeType == "" {
		return "", fmt.Errorf("unsupported file type %q: %w", filepath.Ext(name), domain.ErrUnsupportedType)
	}

	result, err := normaliserRegistry.Normalise(ctx, &domain.RawFile{
		Name:     name,
		MIMEType: mimeType,
		Content:  data,
	})
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return result.Content, nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs := documentService.List(cmd.Context())
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for _, doc := range docs {
		cmd.Printf("  %s\n", doc.ID)
		cmd.Printf("    Name: %s\n", doc.Name)
		if doc.Description != "" {
			cmd.Printf("    Description: %s\n", doc.Description)
		}
		cmd.Printf("    Chunks: %d\n", doc.ChunkCount)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:        %s\n", doc.Name)
	cmd.Printf("  Description: %s\n", doc.Description)
	cmd.Printf("  Chunks:      %d\n", len(doc.Chunks))
	if !doc.CreatedAt.IsZero() {
		cmd.Printf("  Created:     %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
		cmd.Printf("  Updated:     %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	cmd.Println()
	cmd.Println(doc.Content)
	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}

	cmd.Printf("Removed document %s\n", args[0])
	return nil
}
