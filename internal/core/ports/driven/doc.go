// Package driven declares what the core needs from the outside world.
//
// Storage (DocumentStore, RunStore, ConfigStore, PromptStore) and
// EventSink are always wired. The model side is optional and degrades:
// without an LLMService questions fail with ErrLLMUnavailable but search
// works; without an EmbeddingService or SemanticIndex hybrid search
// falls back to BM25. Normalisers and the KnowledgeSource only feed
// documents in.
//
// This package imports domain and nothing else from internal/.
package driven
