package driven

// ConfigStore is a flat view over the persisted settings file. Keys are
// dotted ("llm.provider", "retrieval.top_k"); typed getters return the
// zero value for missing keys or mismatched types.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// Set updates the value and writes the file.
	Set(key string, value any) error

	Save() error
	Load() error
	Path() string
}
