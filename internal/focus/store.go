package focus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/777genius/claude-notifier/internal/config"
	"github.com/777genius/claude-notifier/internal/logging"
	"github.com/777genius/claude-notifier/internal/platform"
)

// Store reads the focus-policy mapping, creating it with defaults when absent.
// The parsed document is cached until Invalidate is called.
type Store struct {
	path string

	mu     sync.Mutex
	cached *Mapping
}

// NewStore returns a Store for the mapping at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the mapping file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the cached mapping, reading (or creating) the file on a miss.
// Callers must treat the result as read-only.
func (s *Store) Load() (*Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached, nil
	}

	m, err := s.read()
	if err != nil {
		return nil, err
	}
	s.cached = m
	return m, nil
}

func (s *Store) read() (*Mapping, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		m := DefaultMapping()
		if err := s.write(m); err != nil {
			logging.Warn("cannot create %s: %v", s.path, err)
		} else {
			logging.Info("created focus mapping %s", s.path)
		}
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read focus mapping: %w", err)
	}

	m := &Mapping{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse focus mapping %s: %w", s.path, err)
	}
	m.applyDefaults()

	projects := make(map[string]Policy, len(m.Projects))
	for dir, p := range m.Projects {
		if err := p.Validate(); err != nil {
			logging.Warn("focus mapping: ignoring project %s: %v", dir, err)
			continue
		}
		projects[normalizeDir(dir)] = p
	}
	m.Projects = projects

	if err := m.Default.Validate(); err != nil {
		logging.Warn("focus mapping: invalid default policy (%v), using %s", err, DefaultPolicy())
		m.Default = DefaultPolicy()
	}
	return m, nil
}

// Save writes m and replaces the cache.
func (s *Store) Save(m *Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(m); err != nil {
		return err
	}
	s.cached = nil
	return nil
}

func (s *Store) write(m *Mapping) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode focus mapping: %w", err)
	}
	return config.WriteFileAtomic(s.path, append(data, '\n'))
}

// Invalidate drops the cached mapping; the next call re-reads the file.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// Resolve returns the policy of the first path with an entry, or the default
// policy when none has one. An unreadable mapping resolves to the built-in
// default.
func (s *Store) Resolve(paths ...string) Policy {
	m, err := s.Load()
	if err != nil {
		logging.Warn("focus resolve: %v", err)
		return DefaultPolicy()
	}
	for _, dir := range paths {
		if dir == "" {
			continue
		}
		if p, ok := m.Projects[normalizeDir(dir)]; ok {
			return p
		}
	}
	return m.Default
}

// Editor returns the built-in editor definition for id.
func (s *Store) Editor(id string) (Editor, error) {
	m, err := s.Load()
	if err != nil {
		m = DefaultMapping()
	}
	e, ok := m.BuiltinEditors[id]
	if !ok {
		return Editor{}, fmt.Errorf("%w: %q", ErrUnknownEditor, id)
	}
	return e, nil
}

func normalizeDir(dir string) string {
	return filepath.Clean(platform.ExpandEnv(dir))
}
