package domain

import "time"

// Document is a named body of text owned by the document collection.
// Chunks are produced once from Content and never mutated; re-adding a
// document with the same ID regenerates them wholesale.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the human-readable name, usually the file name.
	Name string

	// Description is a short summary used by the planner to pick documents.
	Description string

	// Content is the full text before chunking.
	Content string

	// Chunks are the retrieval units, addressed by their index.
	Chunks []string

	// CreatedAt is when the document was first added.
	CreatedAt time.Time

	// UpdatedAt is when the document was last replaced.
	UpdatedAt time.Time
}

// Summary returns the list view of the document.
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		ChunkCount:  len(d.Chunks),
	}
}

// DocumentSummary is the metadata of a document without its text.
type DocumentSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ChunkCount  int    `json:"chunk_count"`
}

// DocumentRef identifies a document in list_documents evidence.
type DocumentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
