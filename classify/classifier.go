package classify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ashokgit/Ultimate-Translator-sub000/document"
)

// Classifier decides whether a field is translated and whether its
// placeholders need protecting.
type Classifier struct {
	reg      *Registry
	detector *Detector
	blocked  map[string]bool
	logger   *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithDetector consults learned patterns from d. When the rule set of a
// tenant is replaced, the tenant's learning state is reset.
func WithDetector(d *Detector) Option {
	return func(c *Classifier) {
		c.detector = d
	}
}

// WithBlockedKeys replaces DefaultBlockedKeys.
func WithBlockedKeys(keys ...string) Option {
	return func(c *Classifier) {
		c.blocked = blockSet(keys)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = l
	}
}

func blockSet(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[strings.ToLower(k)] = true
	}
	return m
}

// NewClassifier returns a Classifier over reg. A nil registry means
// NewRegistry().
func NewClassifier(reg *Registry, opts ...Option) *Classifier {
	if reg == nil {
		reg = NewRegistry()
	}
	c := &Classifier{
		reg:     reg,
		blocked: blockSet(DefaultBlockedKeys),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.detector != nil {
		d, logger := c.detector, c.logger
		reg.OnReplace(func(tenant string) {
			if err := d.Reset(context.Background(), tenant); err != nil {
				logger.Warn("resetting detection state failed", "tenant", tenant, "error", err)
				return
			}
			logger.Info("detection state reset after rule change", "tenant", tenant)
		})
	}
	return c
}

// Registry returns the rule registry.
func (c *Classifier) Registry() *Registry {
	return c.reg
}

// Detector returns the configured detector, or nil.
func (c *Classifier) Detector() *Detector {
	return c.detector
}

// ShouldTranslate reports whether value, stored under key, is sent to a
// provider. Only non-blank strings are ever translated. The first of these
// that applies decides:
//
//  1. key on the block list: no
//  2. tenant, then global, key rules: the rule's action
//  3. tenant, then global, value rules: the rule's action
//  4. key learned for the tenant: no
//  5. yes
func (c *Classifier) ShouldTranslate(key string, value *document.Node, tenant string) bool {
	s, ok := value.Str()
	if !ok || strings.TrimSpace(s) == "" {
		return false
	}
	if c.blocked[strings.ToLower(key)] {
		return false
	}

	sets := c.reg.sets(tenant)
	if r := firstOf(sets, key, value, MatchType.onKey); r != nil {
		return r.Action == Translate
	}
	if r := firstOf(sets, key, value, onValue); r != nil {
		return r.Action == Translate
	}

	if c.detector != nil && c.detector.IsLearned(tenant, key) {
		return false
	}
	return true
}

// ShouldPreserveFormatting reports the PreserveFormatting flag of the first
// rule that applies to key and value, in the same order ShouldTranslate
// uses, falling back to DefaultFormattingRules. Without a matching rule it
// is false. The answer does not depend on ShouldTranslate's.
func (c *Classifier) ShouldPreserveFormatting(key string, value *document.Node, tenant string) bool {
	sets := c.reg.sets(tenant)
	if r := firstOf(sets, key, value, MatchType.onKey); r != nil {
		return r.PreserveFormatting
	}
	if r := firstOf(sets, key, value, onValue); r != nil {
		return r.PreserveFormatting
	}
	if r := formattingRules.first(key, value, onValue); r != nil {
		return r.PreserveFormatting
	}
	return false
}

var formattingRules, _ = NewRuleSet(DefaultFormattingRules())

func onValue(m MatchType) bool {
	return !m.onKey()
}

func firstOf(sets []*RuleSet, key string, value *document.Node, want func(MatchType) bool) *compiledRule {
	for _, rs := range sets {
		if r := rs.first(key, value, want); r != nil {
			return r
		}
	}
	return nil
}
