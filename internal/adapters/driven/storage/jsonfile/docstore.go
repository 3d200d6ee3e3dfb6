// Package jsonfile persists documents as one JSON file each and the run
// audit log as JSON lines.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentsDirName is the directory under the data dir holding documents.
const DocumentsDirName = "documents"

// record is the on-disk shape of a document.
type record struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// DocumentStore keeps each document in <dir>/<id>.json.
type DocumentStore struct {
	mu  sync.RWMutex
	dir string
}

// NewDocumentStore creates the documents directory under dataDir.
func NewDocumentStore(dataDir string) (*DocumentStore, error) {
	dir := filepath.Join(dataDir, DocumentsDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating documents directory: %w", err)
	}
	return &DocumentStore{dir: dir}, nil
}

// Dir returns the documents directory.
func (s *DocumentStore) Dir() string {
	return s.dir
}

// SaveDocument writes the document atomically.
func (s *DocumentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(doc.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(record{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		Content:     doc.Content,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(path, data)
}

// GetDocument reads a document by ID.
func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, err := readDocument(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// DeleteDocument removes the document file.
func (s *DocumentStore) DeleteDocument(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments reads every *.json file, ordered by ID. Unreadable files are
// logged and skipped.
func (s *DocumentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	docs := make([]domain.Document, 0, len(matches))
	for _, path := range matches {
		doc, err := readDocument(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", filepath.Base(path), err)
			continue
		}
		docs = append(docs, *doc)
	}
	slices.SortFunc(docs, func(a, b domain.Document) int { return strings.Compare(a.ID, b.ID) })
	return docs, nil
}

// path maps an ID to its file, rejecting IDs that would escape the directory.
func (s *DocumentStore) path(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("document id %q: %w", id, domain.ErrInvalidInput)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func readDocument(path string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if r.ID == "" {
		r.ID = strings.TrimSuffix(filepath.Base(path), ".json")
	}

	doc := &domain.Document{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Content:     r.Content,
	}
	if info, err := os.Stat(path); err == nil {
		doc.UpdatedAt = info.ModTime()
		doc.CreatedAt = info.ModTime()
	}
	return doc, nil
}

// writeAtomic writes via a temp file and rename so readers never see a
// partial document.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing document: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming document: %w", err)
	}
	return nil
}
