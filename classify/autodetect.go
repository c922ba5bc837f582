package classify

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/ef-ds/deque"
	"github.com/iancoleman/strcase"

	"github.com/ashokgit/Ultimate-Translator-sub000/document"
)

const (
	DefaultMinFrequency        = 3
	DefaultConfidenceThreshold = 0.7
)

// State is the learning state of one tenant.
type State struct {
	PatternFrequency    map[string]int  `yaml:"pattern_frequency" json:"pattern_frequency"`
	LearnedPatterns     map[string]bool `yaml:"learned_patterns" json:"learned_patterns"`
	MinFrequency        int             `yaml:"min_frequency" json:"min_frequency"`
	ConfidenceThreshold float64         `yaml:"confidence_threshold" json:"confidence_threshold"`
}

// NewState returns an empty state with the given thresholds.
func NewState(minFrequency int, threshold float64) *State {
	return &State{
		PatternFrequency:    make(map[string]int),
		LearnedPatterns:     make(map[string]bool),
		MinFrequency:        minFrequency,
		ConfidenceThreshold: threshold,
	}
}

func (s *State) clone() *State {
	out := NewState(s.MinFrequency, s.ConfidenceThreshold)
	for k, v := range s.PatternFrequency {
		out.PatternFrequency[k] = v
	}
	for k, v := range s.LearnedPatterns {
		if v {
			out.LearnedPatterns[k] = true
		}
	}
	return out
}

func (s *State) normalize(minFrequency int, threshold float64) {
	if s.PatternFrequency == nil {
		s.PatternFrequency = make(map[string]int)
	}
	if s.LearnedPatterns == nil {
		s.LearnedPatterns = make(map[string]bool)
	}
	if s.MinFrequency <= 0 {
		s.MinFrequency = minFrequency
	}
	if s.ConfidenceThreshold <= 0 {
		s.ConfidenceThreshold = threshold
	}
}

// technicalParts mark a key containing any of them as a candidate.
var technicalParts = []string{"id", "key", "code", "url", "timestamp", "config", "setting", "hash"}

// strongParts add to a candidate's confidence.
var strongParts = []string{"id", "key", "code", "url", "timestamp", "hash"}

var valueShapes = []*regexp.Regexp{
	regexp.MustCompile(`^(?:0x)?[0-9a-fA-F]{12,}$`),                   // hex string
	regexp.MustCompile(`^\d{6,}$`),                                    // long numeric
	regexp.MustCompile(`^[A-Z][A-Z0-9]*(?:_[A-Z0-9]+)+$`),             // CONSTANT_CASE
	regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+){2,}$`),               // slug
	regexp.MustCompile(`(?i)^(?:https?|ftp)://\S+$`),                  // url
	regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]+$`), // email
}

// patternOf normalises a key to its lower snake_case form, so productCode
// and product_code count as one pattern.
func patternOf(key string) string {
	return strcase.ToSnake(strings.TrimSpace(key))
}

// containsAny reports whether the lower-cased key contains one of parts, so
// userid and zipcode count as well as user_id.
func containsAny(key string, parts []string) bool {
	key = strings.ToLower(key)
	for _, p := range parts {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}

func looksTechnical(s string) bool {
	s = strings.TrimSpace(s)
	for _, re := range valueShapes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Confidence scores a pattern seen frequency times: 0.5, plus 0.3 when it
// contains a technical part, plus 0.02 per sighting up to 0.2.
func Confidence(pattern string, frequency int) float64 {
	score := 0.5
	if containsAny(pattern, strongParts) {
		score += 0.3
	}
	score += min(0.2, 0.02*float64(frequency))
	return min(score, 1.0)
}

// StateStore persists learning state per tenant.
type StateStore interface {
	// Get returns the tenant's state, or nil if none was saved.
	Get(ctx context.Context, tenant string) (*State, error)
	// Merge adds counters and learned patterns from delta to the stored state.
	Merge(ctx context.Context, tenant string, delta *State) error
	// Save replaces the tenant's state.
	Save(ctx context.Context, tenant string, state *State) error
}

// Detector learns keys that hold technical, non-translatable values.
type Detector struct {
	store        StateStore
	minFrequency int
	threshold    float64
	logger       *slog.Logger

	mu     sync.RWMutex
	states map[string]*State
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithStateStore persists learning state in store.
func WithStateStore(store StateStore) DetectorOption {
	return func(d *Detector) {
		d.store = store
	}
}

// WithMinFrequency sets how often a pattern must be seen before it can be
// learned.
func WithMinFrequency(n int) DetectorOption {
	return func(d *Detector) {
		if n > 0 {
			d.minFrequency = n
		}
	}
}

// WithConfidenceThreshold sets the confidence a pattern needs to be learned.
func WithConfidenceThreshold(t float64) DetectorOption {
	return func(d *Detector) {
		if t > 0 {
			d.threshold = t
		}
	}
}

// WithDetectorLogger sets the logger.
func WithDetectorLogger(l *slog.Logger) DetectorOption {
	return func(d *Detector) {
		d.logger = l
	}
}

// NewDetector returns a Detector keeping state in memory unless a store is
// configured.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		store:        NewMemoryStateStore(),
		minFrequency: DefaultMinFrequency,
		threshold:    DefaultConfidenceThreshold,
		logger:       slog.Default(),
		states:       make(map[string]*State),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Observe walks doc breadth first and counts every key whose name or string
// value looks technical. Patterns that reach the tenant's thresholds are
// learned. The updated state is saved to the store.
func (d *Detector) Observe(ctx context.Context, doc *document.Node, tenant string) error {
	seen := collectCandidates(doc)
	if len(seen) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	st, err := d.loadLocked(ctx, tenant)
	if err != nil {
		return err
	}

	for _, pattern := range seen {
		st.PatternFrequency[pattern]++
		freq := st.PatternFrequency[pattern]
		if st.LearnedPatterns[pattern] || freq < st.MinFrequency {
			continue
		}
		if score := Confidence(pattern, freq); score+1e-9 >= st.ConfidenceThreshold {
			st.LearnedPatterns[pattern] = true
			d.logger.Info("learned non-translatable key",
				"tenant", tenant, "pattern", pattern, "frequency", freq, "confidence", score)
		}
	}

	if err := d.store.Save(ctx, tenant, st.clone()); err != nil {
		return fmt.Errorf("saving detection state for %q: %w", tenant, err)
	}
	return nil
}

func collectCandidates(doc *document.Node) []string {
	var out []string
	q := deque.New()
	q.PushBack(doc)
	for q.Len() > 0 {
		v, _ := q.PopFront()
		n := v.(*document.Node)
		switch n.Kind() {
		case document.Object:
			for _, k := range n.Keys() {
				child, _ := n.Get(k)
				if child.IsContainer() {
					q.PushBack(child)
					continue
				}
				s, ok := child.Str()
				if !ok || strings.TrimSpace(s) == "" {
					continue
				}
				if containsAny(k, technicalParts) || looksTechnical(s) {
					out = append(out, patternOf(k))
				}
			}
		case document.Array:
			for _, item := range n.Items() {
				if item.IsContainer() {
					q.PushBack(item)
				}
			}
		}
	}
	return out
}

func (d *Detector) loadLocked(ctx context.Context, tenant string) (*State, error) {
	if st, ok := d.states[tenant]; ok {
		return st, nil
	}
	st, err := d.store.Get(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("loading detection state for %q: %w", tenant, err)
	}
	if st == nil {
		st = NewState(d.minFrequency, d.threshold)
	}
	st.normalize(d.minFrequency, d.threshold)
	d.states[tenant] = st
	return st, nil
}

// Load reads a tenant's saved state into memory so IsLearned can see it
// before the first Observe.
func (d *Detector) Load(ctx context.Context, tenant string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.loadLocked(ctx, tenant)
	return err
}

// IsLearned reports whether key has been learned for tenant.
func (d *Detector) IsLearned(tenant, key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	st, ok := d.states[tenant]
	return ok && st.LearnedPatterns[patternOf(key)]
}

// Learned returns the tenant's learned patterns, sorted.
func (d *Detector) Learned(tenant string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	st, ok := d.states[tenant]
	if !ok {
		return nil
	}
	return sortedKeys(st.LearnedPatterns)
}

// State returns a copy of the tenant's in-memory state.
func (d *Detector) State(tenant string) *State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if st, ok := d.states[tenant]; ok {
		return st.clone()
	}
	return NewState(d.minFrequency, d.threshold)
}

// Import merges state into the tenant's stored state and reloads it.
func (d *Detector) Import(ctx context.Context, tenant string, state *State) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.store.Merge(ctx, tenant, state); err != nil {
		return fmt.Errorf("merging detection state for %q: %w", tenant, err)
	}
	delete(d.states, tenant)
	_, err := d.loadLocked(ctx, tenant)
	return err
}

// Reset clears the tenant's counters and learned patterns.
func (d *Detector) Reset(ctx context.Context, tenant string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := NewState(d.minFrequency, d.threshold)
	d.states[tenant] = st
	if err := d.store.Save(ctx, tenant, st.clone()); err != nil {
		return fmt.Errorf("resetting detection state for %q: %w", tenant, err)
	}
	return nil
}
