package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.KnowledgeSource = (*Connector)(nil)

// maxFileSize bounds the files read from the directory.
const maxFileSize = 10 * 1024 * 1024

// Connector reads ingestible files from the top level of a local directory.
// Hidden files, subdirectories and files with unsupported MIME types are
// ignored.
type Connector struct {
	root      string
	mimeTypes map[string]bool

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// Option configures a Connector.
type Option func(*Connector)

// WithMIMETypes restricts the files the connector reports.
// Defaults to plain text and markdown.
func WithMIMETypes(types ...string) Option {
	return func(c *Connector) {
		c.mimeTypes = make(map[string]bool, len(types))
		for _, t := range types {
			c.mimeTypes[t] = true
		}
	}
}

// New creates a connector for root.
func New(root string, opts ...Option) *Connector {
	c := &Connector{
		root: root,
		mimeTypes: map[string]bool{
			domain.MIMETypePlainText: true,
			domain.MIMETypeMarkdown:  true,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the watched directory.
func (c *Connector) Root() string {
	return c.root
}

// Scan lists the directory in name order. A missing directory yields no files.
func (c *Connector) Scan(ctx context.Context) ([]domain.FileChange, error) {
	entries, err := os.ReadDir(c.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read knowledge dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var changes []domain.FileChange
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return changes, err
		}
		if entry.IsDir() || !c.accepts(entry.Name()) {
			continue
		}
		path := filepath.Join(c.root, entry.Name())
		raw, err := c.readFile(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			continue
		}
		changes = append(changes, domain.FileChange{Type: domain.ChangeCreated, Path: path, File: raw})
	}
	return changes, nil
}

// Watch starts an fsnotify watcher on the directory. The returned channel is
// closed when ctx is cancelled or the connector is closed.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.FileChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("connector closed")
	}
	if c.watcher != nil {
		return nil, errors.New("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(c.root); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.root, err)
	}
	c.watcher = watcher

	changes := make(chan domain.FileChange, 16)
	go c.loop(ctx, watcher, changes)
	return changes, nil
}

func (c *Connector) loop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- domain.FileChange) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			_ = c.Close()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			change := c.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case out <- *change:
			case <-ctx.Done():
				_ = c.Close()
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Knowledge watcher error: %v", err)
		}
	}
}

// handleFsEvent converts an fsnotify event into a change, or nil when the
// event is irrelevant.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.FileChange {
	name := filepath.Base(event.Name)
	if !c.accepts(name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.FileChange{Type: domain.ChangeDeleted, Path: event.Name}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		raw, err := c.readFile(event.Name)
		if err != nil {
			logger.Warn("Skipping %s: %v", event.Name, err)
			return nil
		}
		typ := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			typ = domain.ChangeCreated
		}
		return &domain.FileChange{Type: typ, Path: event.Name, File: raw}
	default:
		return nil
	}
}

func (c *Connector) accepts(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return c.mimeTypes[domain.MIMETypeForName(name)]
}

func (c *Connector) readFile(path string) (*domain.RawFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("file too large (%d bytes)", info.Size())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	return &domain.RawFile{Name: name, MIMEType: domain.MIMETypeForName(name), Content: content}, nil
}

// Close stops the watcher. Safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}
