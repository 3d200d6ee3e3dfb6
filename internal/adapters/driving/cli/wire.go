package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// normaliserRegistry extracts text from files added through the CLI and
// the knowledge directory.
var normaliserRegistry driven.NormaliserRegistry = normalisers.NewDefaultRegistry()

// resolveConfigDir returns the --config directory or the default.
func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return file.DefaultConfigDir()
}

func wireSettings() error {
	if settingsReady {
		return nil
	}
	dir, err := resolveConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	settingsReady = true
	return nil
}

// wireServices builds the document collection, the answer loop and the
// run log from the stored settings.
func wireServices(ctx context.Context) error {
	if servicesReady {
		return nil
	}
	if err := wireSettings(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := settingsService.Validate(); err != nil {
		logger.Warn("Settings: %v", err)
	}

	cfgDir, err := resolveConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(cfgDir, "data")
	}

	docStore, runStore, err := openStorage(settings.Storage.Backend, dataDir)
	if err != nil {
		return err
	}

	prompts, err := file.NewPromptStore(filepath.Join(cfgDir, "prompts"))
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}
	aiServices := ai.Initialise(settings, prompts)
	onRelease(aiServices.Close)
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	collection := services.NewDocumentCollection(
		chunker.New(chunker.WithMaxLength(settings.Retrieval.ChunkSize)),
		docStore,
		aiServices.SemanticIndex,
	)
	if n, err := collection.LoadPersisted(ctx); err != nil {
		logger.Warn("Failed to load persisted documents: %v", err)
	} else {
		logger.Debug("Loaded %d persisted documents", n)
	}

	if settings.Storage.Autoload {
		source := filesystem.New(settings.Storage.KnowledgeDir,
			filesystem.WithMIMETypes(normaliserRegistry.SupportedMIMETypes()...))
		onRelease(func() { _ = source.Close() })
		knowledgeLoader = services.NewKnowledgeLoader(collection, source, normaliserRegistry)
		if _, err := knowledgeLoader.LoadAll(ctx); err != nil {
			logger.Warn("Knowledge autoload: %v", err)
		}
	}

	var agents services.Agents
	if aiServices.LLMService != nil {
		llmAgents := services.NewLLMAgents(aiServices.LLMService, settings.Retrieval.TopK)
		llmAgents.SetPromptStore(prompts)
		agents = services.Agents{Planner: llmAgents, Judge: llmAgents, Synthesizer: llmAgents}
		summariser = aiServices.LLMService
	}

	fusionWeights = settings.Retrieval.Weights()
	documentService = collection
	askService = services.NewAskService(collection, agents, runStore, services.AskConfig{
		MaxAttempts:        settings.Orchestrator.MaxAttempts,
		SynthEvidenceLimit: settings.Orchestrator.SynthEvidenceLimit,
		TopK:               settings.Retrieval.TopK,
		Weights:            fusionWeights,
	})
	runService = services.NewRunService(runStore)
	serverPort = settings.Server.Port
	watchKnowledge = settings.Storage.Watch
	servicesReady = true
	return nil
}

// openStorage opens the document and run stores for a backend.
func openStorage(backend domain.StorageBackend, dataDir string) (driven.DocumentStore, driven.RunStore, error) {
	switch backend {
	case domain.StorageBackendMemory:
		return memory.NewDocumentStore(), memory.NewRunStore(), nil
	case domain.StorageBackendSQLite:
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		onRelease(func() { _ = store.Close() })
		return store.DocumentStore(), store.RunStore(), nil
	case domain.StorageBackendJSON, "":
		docs, err := jsonfile.NewDocumentStore(dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open document store: %w", err)
		}
		runs, err := jsonfile.NewRunStore(dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open run store: %w", err)
		}
		return docs, runs, nil
	default:
		return nil, nil, fmt.Errorf("storage backend %q: %w", backend, domain.ErrInvalidInput)
	}
}

// startWatch re-syncs the knowledge directory in the background when
// watching is enabled.
func startWatch(ctx context.Context) {
	if !watchKnowledge || knowledgeLoader == nil {
		return
	}
	go func() {
		if err := knowledgeLoader.Watch(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("Knowledge watch stopped: %v", err)
		}
	}()
}
