package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyContent indicates a document was added without any text.
	ErrEmptyContent = errors.New("document content cannot be empty")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown file type or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured or failed.
	// Asking questions requires an LLM; document search does not.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSemanticUnavailable indicates semantic search is disabled.
	// Hybrid search degrades to lexical-only ranking.
	ErrSemanticUnavailable = errors.New("semantic search unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not reachable.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrConfigNotFound indicates a configuration key or file is absent.
	ErrConfigNotFound = errors.New("config not found")

	// ErrRunStoreUnavailable indicates no audit log is configured.
	ErrRunStoreUnavailable = errors.New("run store unavailable")
)
