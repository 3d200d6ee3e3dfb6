package domain

import (
	"path/filepath"
	"strings"
)

// RawFile is an uploaded or discovered file before text extraction.
type RawFile struct {
	// Name is the file name including extension.
	Name string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Known MIME types for ingestible files.
const (
	MIMETypePlainText = "text/plain"
	MIMETypeMarkdown  = "text/markdown"
	MIMETypePDF       = "application/pdf"
	MIMETypeHTML      = "text/html"
)

// MIMETypeForName infers the content type from a file extension.
// Returns an empty string for unknown extensions.
func MIMETypeForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return MIMETypePlainText
	case ".md", ".markdown":
		return MIMETypeMarkdown
	case ".pdf":
		return MIMETypePDF
	case ".html", ".htm":
		return MIMETypeHTML
	default:
		return ""
	}
}

// DocIDForName derives a document id from a file name by replacing dots
// with underscores.
func DocIDForName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// TitleForName turns a file name into a readable title: the extension is
// dropped and underscores and dashes become spaces.
func TitleForName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.NewReplacer("_", " ", "-", " ").Replace(base)
}

// ChangeType represents the type of file change.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed file.
	ChangeDeleted
)

// String returns the string representation.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileChange is a change observed in a watched directory.
// File is nil for deletions.
type FileChange struct {
	Type ChangeType
	Path string
	File *RawFile
}
