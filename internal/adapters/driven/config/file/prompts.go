package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads agent prompts from <dir>/<name>.txt, falling back to the
// built-in defaults. Files are created lazily on the first Load.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts seed new prompt files and back missing ones.
var defaultPrompts = map[string]string{
	driven.PromptPlannerSystem:     domain.DefaultPlannerPrompt,
	driven.PromptJudgeSystem:       domain.DefaultJudgePrompt,
	driven.PromptSynthesizerSystem: domain.DefaultSynthesizerPrompt,
	driven.PromptSummarise:         domain.DefaultSummarisePrompt,
}

// NewPromptStore creates a file-based prompt store.
// If promptDir is empty, defaults to ~/.sercha-rag/prompts/.
// No I/O happens until the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}
	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		// An emptied file means "use the default".
		def, ok := defaultPrompts[name]
		if !ok {
			if err == nil {
				err = errors.New("empty prompt file")
			}
			return "", fmt.Errorf("load prompt %q: %w", name, err)
		}
		prompt = def
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()
	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the directory, default prompt files and a README.
// Existing files are never overwritten.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0o700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	for name, content := range defaultPrompts {
		if err := writeIfMissing(filepath.Join(s.promptDir, name+".txt"), content); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}
	if err := writeIfMissing(filepath.Join(s.promptDir, "README.md"), readme); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

const readme = "# sercha-rag prompts\n\n" +
	"System prompts for the question answering agents.\n\n" +
	"## Files\n\n" +
	"- `planner_system.txt` - gathers evidence with tools and drafts the answer (`%d` is top_k)\n" +
	"- `judge_system.txt` - accepts or rejects a draft as strict JSON\n" +
	"- `synthesizer_system.txt` - rewrites the draft from the evidence\n" +
	"- `summarise.txt` - describes uploaded files (`%d` max length, `%s` content)\n\n" +
	"Edit a file to change agent behaviour; empty a file to restore the default.\n" +
	"Changes apply to the next command or server restart.\n\n" +
	"Keep the `" + domain.DraftAnswerStart + "` / `" + domain.DraftAnswerEnd + "` markers\n" +
	"in planner and synthesizer prompts; the answer is read from between them.\n"
