package driven

// Chunker splits document text into retrieval units.
type Chunker interface {
	// Split returns the chunks of text in document order.
	// Empty or whitespace-only text yields no chunks.
	Split(text string) []string
}
