package classify

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// MemoryStateStore keeps state in process memory.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]*State
}

// NewMemoryStateStore returns an empty MemoryStateStore.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]*State)}
}

// Get implements StateStore.
func (s *MemoryStateStore) Get(ctx context.Context, tenant string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[tenant]
	if !ok {
		return nil, nil
	}
	return st.clone(), nil
}

// Merge implements StateStore.
func (s *MemoryStateStore) Merge(ctx context.Context, tenant string, delta *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[tenant] = merge(s.states[tenant], delta)
	return nil
}

// Save implements StateStore.
func (s *MemoryStateStore) Save(ctx context.Context, tenant string, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[tenant] = state.clone()
	return nil
}

func merge(base, delta *State) *State {
	if delta == nil {
		delta = &State{}
	}
	if base == nil {
		base = NewState(delta.MinFrequency, delta.ConfidenceThreshold)
	} else {
		base = base.clone()
	}
	for k, v := range delta.PatternFrequency {
		base.PatternFrequency[k] += v
	}
	for k, v := range delta.LearnedPatterns {
		if v {
			base.LearnedPatterns[k] = true
		}
	}
	return base
}

// stateFileVersion is the state file format version.
const stateFileVersion = 1

type stateFile struct {
	Version int               `yaml:"version"`
	Tenants map[string]*State `yaml:"tenants"`
}

// FileStateStore keeps every tenant's state in one YAML file. The file is
// rewritten on each Merge and Save.
type FileStateStore struct {
	path string

	mu sync.Mutex
}

// NewFileStateStore returns a store backed by path. The file is created on
// the first write.
func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{path: path}
}

// Path returns the state file path.
func (s *FileStateStore) Path() string {
	return s.path
}

func (s *FileStateStore) load() (*stateFile, error) {
	f := &stateFile{Version: stateFileVersion, Tenants: make(map[string]*State)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if f.Tenants == nil {
		f.Tenants = make(map[string]*State)
	}
	return f, nil
}

func (s *FileStateStore) write(f *stateFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling detection state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// Get implements StateStore.
func (s *FileStateStore) Get(ctx context.Context, tenant string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	st, ok := f.Tenants[tenant]
	if !ok || st == nil {
		return nil, nil
	}
	st.normalize(DefaultMinFrequency, DefaultConfidenceThreshold)
	return st, nil
}

// Merge implements StateStore.
func (s *FileStateStore) Merge(ctx context.Context, tenant string, delta *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return err
	}
	if base := f.Tenants[tenant]; base != nil {
		base.normalize(DefaultMinFrequency, DefaultConfidenceThreshold)
	}
	f.Tenants[tenant] = merge(f.Tenants[tenant], delta)
	return s.write(f)
}

// Save implements StateStore.
func (s *FileStateStore) Save(ctx context.Context, tenant string, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return err
	}
	f.Tenants[tenant] = state.clone()
	return s.write(f)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

var (
	_ StateStore = (*MemoryStateStore)(nil)
	_ StateStore = (*FileStateStore)(nil)
)
