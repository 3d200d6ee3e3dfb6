package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

// unwired clears injected services so the next command wires real ones
// from a temporary config directory.
func unwired(t *testing.T) string {
	t.Helper()
	setupTestServices(t)

	for _, key := range []string{
		services.EnvLLMProvider, services.EnvLLMModel, services.EnvEmbeddingProvider,
		services.EnvSemanticEnabled, services.EnvQdrantURL, services.EnvAutoload, services.EnvServerPort,
	} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	configDir = dir
	servicesReady = false
	settingsReady = false
	t.Cleanup(func() {
		release()
		summariser = nil
		knowledgeLoader = nil
		watchKnowledge = false
		serverPort = domain.DefaultPort
	})
	return dir
}

func TestWireServices_Defaults(t *testing.T) {
	dir := unwired(t)
	ctx := context.Background()

	require.NoError(t, wireServices(ctx))

	assert.True(t, servicesReady)
	require.NotNil(t, documentService)
	require.NotNil(t, askService)
	require.NotNil(t, runService)
	assert.Nil(t, summariser, "no LLM is configured by default")
	assert.False(t, documentService.SemanticEnabled())
	assert.Equal(t, domain.DefaultPort, serverPort)
	assert.Equal(t, domain.DefaultFusionWeights(), fusionWeights)
	assert.DirExists(t, filepath.Join(dir, "data"))

	_, err := askService.Ask(ctx, "q", driving.AskOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestWireServices_IsIdempotent(t *testing.T) {
	unwired(t)
	ctx := context.Background()

	require.NoError(t, wireServices(ctx))
	first := documentService
	require.NoError(t, wireServices(ctx))

	assert.Same(t, first, documentService)
}

func TestWireServices_PersistsDocuments(t *testing.T) {
	dir := unwired(t)
	ctx := context.Background()

	require.NoError(t, wireServices(ctx))
	_, err := documentService.Add(ctx, driving.AddDocumentRequest{
		ID: "pets", Name: "Pets", Description: "animals", Content: "The cat sat on the mat.",
	})
	require.NoError(t, err)

	// A second process reading the same config directory.
	release()
	servicesReady = false
	settingsReady = false
	configDir = dir
	require.NoError(t, wireServices(ctx))

	doc, err := documentService.Get(ctx, "pets")
	require.NoError(t, err)
	assert.Equal(t, "The cat sat on the mat.", doc.Content)
}

func TestWireServices_AutoloadsKnowledge(t *testing.T) {
	unwired(t)
	work := t.TempDir()
	t.Chdir(work)
	require.NoError(t, os.MkdirAll(filepath.Join(work, "knowledge"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(work, "knowledge", "guide.md"), []byte("# Guide\n\nRead the manual."), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(work, "knowledge", "image.png"), []byte{0x89}, 0o600))

	require.NoError(t, wireServices(context.Background()))

	docs := documentService.List(context.Background())
	require.Len(t, docs, 1)
	assert.Equal(t, "auto_guide_md", docs[0].ID)
	assert.NotNil(t, knowledgeLoader)
}

func TestWireServices_EndToEndCommand(t *testing.T) {
	unwired(t)
	path := writeFile(t, "pets.txt", "The cat sat on the mat.\n\nThe dog ran in the park.")

	_, err := execute(t, "document", "add", path)
	require.NoError(t, err)

	out, err := execute(t, "search", "dog")
	require.NoError(t, err)
	assert.Contains(t, out, "pets.txt #1")
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	for _, backend := range []domain.StorageBackend{
		domain.StorageBackendMemory,
		domain.StorageBackendJSON,
		domain.StorageBackendSQLite,
	} {
		t.Run(string(backend), func(t *testing.T) {
			dir := t.TempDir()
			t.Cleanup(release)

			docs, runs, err := openStorage(backend, dir)
			require.NoError(t, err)
			require.NotNil(t, docs)
			require.NotNil(t, runs)

			require.NoError(t, docs.SaveDocument(ctx, &domain.Document{ID: "a", Name: "A", Content: "text"}))
			got, err := docs.GetDocument(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "text", got.Content)
		})
	}

	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := openStorage("postgres", t.TempDir())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
