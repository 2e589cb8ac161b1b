package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
)

// PromptsFileName is the name of the prompt file in the config dir.
const PromptsFileName = "prompts.toml"

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt templates from a user-editable TOML file.
//
// The file is created with the built-in defaults on first Load, not in the
// constructor. Values missing from the file fall back to the defaults.
type PromptStore struct {
	mu       sync.RWMutex
	path     string
	cache    map[string]string
	initOnce sync.Once
	initErr  error
}

// promptFile is the on-disk layout. Multiline keeps the template readable.
type promptFile struct {
	Answer string `toml:"answer,multiline"`
}

var defaultPrompts = map[string]string{
	driven.PromptAnswer: domain.AnswerPromptTemplate,
}

// NewPromptStore creates a prompt store for prompts.toml in configDir,
// resolved with ConfigDir.
func NewPromptStore(configDir string) (*PromptStore, error) {
	configDir, err := ConfigDir(configDir)
	if err != nil {
		return nil, err
	}
	return &PromptStore{
		path:  filepath.Join(configDir, PromptsFileName),
		cache: make(map[string]string),
	}, nil
}

// Load returns the prompt template for name. A template that lost one of
// its placeholders fails with domain.ErrInvalidInput.
func (s *PromptStore) Load(name string) (string, error) {
	def, known := defaultPrompts[name]
	if !known {
		return "", fmt.Errorf("%w: unknown prompt %q", domain.ErrNotFound, name)
	}

	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return def, nil
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompts, err := s.readFile()
	if err != nil {
		return "", err
	}
	prompt := prompts[name]
	if prompt == "" {
		prompt = def
	}
	if name == driven.PromptAnswer {
		if err := domain.ValidatePromptTemplate(prompt); err != nil {
			return "", fmt.Errorf("%s: %w", s.path, err)
		}
	}

	s.mu.Lock()
	s.cache[name] = prompt
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Path returns the prompt file path.
func (s *PromptStore) Path() string {
	return s.path
}

// initialise writes the default prompt file if none exists.
func (s *PromptStore) initialise() {
	if _, err := os.Stat(s.path); err == nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.initErr = fmt.Errorf("creating prompt directory: %w", err)
		return
	}
	data, err := toml.Marshal(promptFile{Answer: defaultPrompts[driven.PromptAnswer]})
	if err != nil {
		s.initErr = fmt.Errorf("encoding default prompts: %w", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.initErr = fmt.Errorf("writing default prompts: %w", err)
	}
}

func (s *PromptStore) readFile() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading prompts: %w", err)
	}

	var pf promptFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidInput, s.path, err)
	}
	return map[string]string{driven.PromptAnswer: pf.Answer}, nil
}
