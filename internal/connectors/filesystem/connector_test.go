package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConnector_Scan(t *testing.T) {
	t.Run("lists supported files in name order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "b.md", "# B")
		writeFile(t, dir, "a.txt", "alpha")
		writeFile(t, dir, ".hidden.txt", "secret")
		writeFile(t, dir, "image.png", "binary")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

		changes, err := New(dir).Scan(context.Background())

		require.NoError(t, err)
		require.Len(t, changes, 2)
		assert.Equal(t, "a.txt", changes[0].File.Name)
		assert.Equal(t, domain.MIMETypePlainText, changes[0].File.MIMEType)
		assert.Equal(t, []byte("alpha"), changes[0].File.Content)
		assert.Equal(t, domain.ChangeCreated, changes[0].Type)
		assert.Equal(t, "b.md", changes[1].File.Name)
		assert.Equal(t, domain.MIMETypeMarkdown, changes[1].File.MIMEType)
	})

	t.Run("missing directory yields nothing", func(t *testing.T) {
		changes, err := New(filepath.Join(t.TempDir(), "absent")).Scan(context.Background())

		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("custom MIME types", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "alpha")
		writeFile(t, dir, "b.pdf", "%PDF")

		changes, err := New(dir, WithMIMETypes(domain.MIMETypePDF)).Scan(context.Background())

		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, "b.pdf", changes[0].File.Name)
	})
}

func TestConnector_Watch(t *testing.T) {
	t.Run("reports created files", func(t *testing.T) {
		dir := t.TempDir()
		connector := New(dir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := connector.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.WriteFile(filepath.Join(dir, "new-file.txt"), []byte("content"), 0o644)
		}()

		select {
		case change := <-changes:
			assert.Contains(t, change.Path, "new-file.txt")
			assert.NotEqual(t, domain.ChangeDeleted, change.Type)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file change event")
		}
	})

	t.Run("channel closes on cancel", func(t *testing.T) {
		connector := New(t.TempDir())
		ctx, cancel := context.WithCancel(context.Background())

		changes, err := connector.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("channel not closed after cancel")
		}
	})

	t.Run("cannot watch twice", func(t *testing.T) {
		connector := New(t.TempDir())
		defer connector.Close()

		_, err := connector.Watch(context.Background())
		require.NoError(t, err)
		_, err = connector.Watch(context.Background())
		assert.Error(t, err)
	})

	t.Run("missing directory fails", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "absent")).Watch(context.Background())
		assert.Error(t, err)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		connector := New(t.TempDir())
		assert.NoError(t, connector.Close())
		assert.NoError(t, connector.Close())

		_, err := connector.Watch(context.Background())
		assert.Error(t, err)
	})
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name           string
		file           string
		create         bool
		dir            bool
		operation      fsnotify.Op
		expectedChange bool
		expectedType   domain.ChangeType
	}{
		{name: "create", file: "test.txt", create: true, operation: fsnotify.Create, expectedChange: true, expectedType: domain.ChangeCreated},
		{name: "write", file: "test.md", create: true, operation: fsnotify.Write, expectedChange: true, expectedType: domain.ChangeUpdated},
		{name: "remove", file: "removed.txt", operation: fsnotify.Remove, expectedChange: true, expectedType: domain.ChangeDeleted},
		{name: "rename", file: "renamed.txt", operation: fsnotify.Rename, expectedChange: true, expectedType: domain.ChangeDeleted},
		{name: "combined write and chmod", file: "test.txt", create: true, operation: fsnotify.Write | fsnotify.Chmod, expectedChange: true, expectedType: domain.ChangeUpdated},
		{name: "chmod only", file: "test.txt", create: true, operation: fsnotify.Chmod},
		{name: "directory", file: "folder.txt", dir: true, operation: fsnotify.Create},
		{name: "hidden", file: ".hidden.txt", create: true, operation: fsnotify.Create},
		{name: "hidden remove", file: ".hidden.txt", operation: fsnotify.Remove},
		{name: "unsupported extension", file: "photo.jpg", create: true, operation: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			switch {
			case tt.dir:
				require.NoError(t, os.Mkdir(path, 0o755))
			case tt.create:
				writeFile(t, dir, tt.file, "content")
			}

			change := New(dir).handleFsEvent(fsnotify.Event{Name: path, Op: tt.operation})

			if !tt.expectedChange {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.expectedType, change.Type)
			assert.Equal(t, path, change.Path)
			if tt.expectedType == domain.ChangeDeleted {
				assert.Nil(t, change.File)
			} else {
				assert.Equal(t, []byte("content"), change.File.Content)
			}
		})
	}
}
