package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// autoloadPrefix marks documents that came from the knowledge directory.
const autoloadPrefix = "auto_"

// KnowledgeLoader keeps the collection in step with a knowledge directory.
type KnowledgeLoader struct {
	docs        driving.DocumentService
	source      driven.KnowledgeSource
	normalisers driven.NormaliserRegistry
}

// NewKnowledgeLoader creates a loader. normalisers may be nil, in which
// case file bytes are used as text.
func NewKnowledgeLoader(
	docs driving.DocumentService,
	source driven.KnowledgeSource,
	normalisers driven.NormaliserRegistry,
) *KnowledgeLoader {
	return &KnowledgeLoader{docs: docs, source: source, normalisers: normalisers}
}

// KnowledgeDocID returns the id given to a knowledge file.
func KnowledgeDocID(name string) string {
	return autoloadPrefix + domain.DocIDForName(name)
}

// LoadAll adds every file currently in the directory. Files that fail are
// logged and skipped. Returns the number of documents added.
func (l *KnowledgeLoader) LoadAll(ctx context.Context) (int, error) {
	changes, err := l.source.Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("scan knowledge: %w", err)
	}

	loaded := 0
	for _, change := range changes {
		if err := l.apply(ctx, change); err != nil {
			logger.Warn("Failed autoload %s: %v", change.Path, err)
			continue
		}
		loaded++
	}
	logger.Debug("Autoloaded %d knowledge files", loaded)
	return loaded, nil
}

// Watch applies directory changes until ctx is cancelled.
func (l *KnowledgeLoader) Watch(ctx context.Context) error {
	changes, err := l.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch knowledge: %w", err)
	}
	for change := range changes {
		if err := l.apply(ctx, change); err != nil {
			logger.Warn("Failed to apply %s change to %s: %v", change.Type, change.Path, err)
			continue
		}
		logger.Info("Knowledge %s: %s", change.Type, filepath.Base(change.Path))
	}
	return ctx.Err()
}

func (l *KnowledgeLoader) apply(ctx context.Context, change domain.FileChange) error {
	name := filepath.Base(change.Path)
	if change.Type == domain.ChangeDeleted {
		err := l.docs.Remove(ctx, KnowledgeDocID(name))
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if change.File == nil {
		return fmt.Errorf("no file content: %w", domain.ErrInvalidInput)
	}

	text, err := l.extract(ctx, change.File)
	if err != nil {
		return err
	}
	_, err = l.docs.Add(ctx, driving.AddDocumentRequest{
		ID:          KnowledgeDocID(change.File.Name),
		Name:        change.File.Name,
		Description: "Auto-loaded from " + change.File.Name,
		Content:     text,
	})
	return err
}

func (l *KnowledgeLoader) extract(ctx context.Context, raw *domain.RawFile) (string, error) {
	if l.normalisers == nil {
		return string(raw.Content), nil
	}
	res, err := l.normalisers.Normalise(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("normalise %s: %w", raw.Name, err)
	}
	return res.Content, nil
}
