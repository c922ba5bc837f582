// Package classify decides, field by field, whether a document value should
// be translated and whether its placeholders need protection.
//
// Decisions come from ordered rule sets (a tenant's own rules first, then
// the global defaults), an exact key block list and patterns learned at
// runtime by a Detector.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/ashokgit/Ultimate-Translator-sub000/document"
)

// MatchType selects what a rule is matched against.
type MatchType int

const (
	KeyExact     MatchType = iota // key equals Pattern, case-insensitively
	KeyPattern                    // key matches the Pattern regexp
	ValuePattern                  // string value matches the Pattern regexp
	ContentType                   // string value is of the named content type
)

var matchTypeNames = [...]string{
	KeyExact:     "key_exact",
	KeyPattern:   "key_pattern",
	ValuePattern: "value_pattern",
	ContentType:  "content_type",
}

func (m MatchType) String() string {
	if m < 0 || int(m) >= len(matchTypeNames) {
		return fmt.Sprintf("match_type(%d)", int(m))
	}
	return matchTypeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m MatchType) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(matchTypeNames) {
		return nil, fmt.Errorf("unknown match type %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText accepts snake_case or camelCase names ("keyExact").
func (m *MatchType) UnmarshalText(text []byte) error {
	name := strcase.ToSnake(strings.TrimSpace(string(text)))
	for i, n := range matchTypeNames {
		if n == name {
			*m = MatchType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown match type %q", string(text))
}

func (m MatchType) onKey() bool {
	return m == KeyExact || m == KeyPattern
}

// Action is what happens to a value matched by a rule.
type Action int

const (
	Exclude Action = iota
	Translate
)

func (a Action) String() string {
	if a == Translate {
		return "translate"
	}
	return "exclude"
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "exclude", "skip", "":
		*a = Exclude
	case "translate", "include":
		*a = Translate
	default:
		return fmt.Errorf("unknown action %q", string(text))
	}
	return nil
}

// Rule is a single translation rule.
type Rule struct {
	ID                 string    `yaml:"id" json:"id"`
	Match              MatchType `yaml:"match_type" json:"match_type"`
	Pattern            string    `yaml:"pattern" json:"pattern"`
	PreserveFormatting bool      `yaml:"preserve_formatting,omitempty" json:"preserve_formatting,omitempty"`
	Action             Action    `yaml:"action" json:"action"`
}

// RuleError reports a rule that could not be compiled. The rule is left out
// of its rule set.
type RuleError struct {
	RuleID  string
	Pattern string
	Cause   error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %q (pattern %q): %v", e.RuleID, e.Pattern, e.Cause)
}

func (e *RuleError) Unwrap() error {
	return e.Cause
}

type compiledRule struct {
	Rule
	re     *regexp.Regexp
	detect Detect
}

func compile(r Rule) (*compiledRule, error) {
	cr := &compiledRule{Rule: r}
	switch r.Match {
	case KeyExact:
		if r.Pattern == "" {
			return nil, fmt.Errorf("empty key")
		}
	case KeyPattern, ValuePattern:
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, err
		}
		cr.re = re
	case ContentType:
		detect, ok := lookupContentType(r.Pattern)
		if !ok {
			return nil, fmt.Errorf("unknown content type %q", r.Pattern)
		}
		cr.detect = detect
	default:
		return nil, fmt.Errorf("unknown match type %d", int(r.Match))
	}
	return cr, nil
}

func (r *compiledRule) matches(key string, value *document.Node) bool {
	switch r.Match {
	case KeyExact:
		return strings.EqualFold(key, r.Pattern)
	case KeyPattern:
		return r.re.MatchString(key)
	case ValuePattern:
		s, ok := value.Str()
		return ok && r.re.MatchString(s)
	case ContentType:
		s, ok := value.Str()
		return ok && r.detect(s)
	}
	return false
}

// RuleSet is an ordered, compiled and immutable list of rules.
type RuleSet struct {
	rules []*compiledRule
}

// NewRuleSet compiles rules in order. Rules that fail to compile are left
// out and reported, one *RuleError each.
func NewRuleSet(rules []Rule) (*RuleSet, []error) {
	rs := &RuleSet{rules: make([]*compiledRule, 0, len(rules))}
	var errs []error
	for i, r := range rules {
		if r.ID == "" {
			r.ID = fmt.Sprintf("rule-%d", i+1)
		}
		cr, err := compile(r)
		if err != nil {
			errs = append(errs, &RuleError{RuleID: r.ID, Pattern: r.Pattern, Cause: err})
			continue
		}
		rs.rules = append(rs.rules, cr)
	}
	return rs, errs
}

// Rules returns the compiled rules in evaluation order.
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	out := make([]Rule, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.Rule
	}
	return out
}

// Len returns the number of usable rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// first returns the first rule accepted by want that matches.
func (rs *RuleSet) first(key string, value *document.Node, want func(MatchType) bool) *compiledRule {
	if rs == nil {
		return nil
	}
	for _, r := range rs.rules {
		if want(r.Match) && r.matches(key, value) {
			return r
		}
	}
	return nil
}
