package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// mockAskService emits its events to the sink and returns a fixed result.
type mockAskService struct {
	events   []domain.Event
	result   *domain.OrchestrationResult
	err      error
	question string
	opts     driving.AskOptions
}

func (m *mockAskService) Ask(_ context.Context, question string, opts driving.AskOptions) (*domain.OrchestrationResult, error) {
	m.question = question
	m.opts = opts
	for _, ev := range m.events {
		if opts.Sink != nil {
			opts.Sink.Emit(ev)
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// testServices holds what setupTestServices injected.
type testServices struct {
	docs *services.DocumentCollection
	runs *memory.RunStore
	ask  *mockAskService
}

// setupTestServices injects in-memory services and resets flags. The
// previous state is restored when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	prev := struct {
		settings      driving.SettingsService
		docs          driving.DocumentService
		ask           driving.AskService
		runs          driving.RunService
		servicesReady bool
		settingsReady bool
		configDir     string
		fusionWeights domain.FusionWeights
	}{settingsService, documentService, askService, runService, servicesReady, settingsReady, configDir, fusionWeights}

	ts := &testServices{
		docs: services.NewDocumentCollection(chunker.New(), memory.NewDocumentStore(), nil),
		runs: memory.NewRunStore(),
		ask:  &mockAskService{result: &domain.OrchestrationResult{}},
	}

	settingsService = services.NewSettingsService(memory.NewConfigStore(), nil)
	documentService = ts.docs
	askService = ts.ask
	runService = services.NewRunService(ts.runs)
	fusionWeights = domain.DefaultFusionWeights()
	servicesReady = true
	settingsReady = true
	resetFlags()

	t.Cleanup(func() {
		settingsService = prev.settings
		documentService = prev.docs
		askService = prev.ask
		runService = prev.runs
		servicesReady = prev.servicesReady
		settingsReady = prev.settingsReady
		configDir = prev.configDir
		fusionWeights = prev.fusionWeights
		resetFlags()
	})
	return ts
}

// resetFlags restores flag variables to their defaults between executions.
func resetFlags() {
	verbose = false
	askMaxAttempts = 0
	askJSON = false
	searchLimit = domain.DefaultTopK
	searchJSON = false
	searchHybrid = false
	searchDocID = ""
	runsLimit = 20
	addDocID = ""
	addDocName = ""
	addDescription = ""
	semanticBackend = string(domain.VectorBackendMemory)
	servePort = 0
	mcpPort = 0
}

// execute runs the root command with args and returns the combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// addDoc adds a document directly to the collection.
func addDoc(t *testing.T, ts *testServices, id, name, content string) {
	t.Helper()
	_, err := ts.docs.Add(context.Background(), driving.AddDocumentRequest{
		ID:          id,
		Name:        name,
		Description: name,
		Content:     content,
	})
	require.NoError(t, err)
}
