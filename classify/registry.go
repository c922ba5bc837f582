package classify

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// RuleFile is the on-disk layout of a rule file.
//
//	global:
//	  - id: sku
//	    match_type: key_exact
//	    pattern: sku
//	    action: exclude
//	tenants:
//	  acme:
//	    - match_type: value_pattern
//	      pattern: '^ACME-\d+$'
type RuleFile struct {
	Global  []Rule            `yaml:"global,omitempty"`
	Tenants map[string][]Rule `yaml:"tenants,omitempty"`
}

// Registry holds the global rule set and one rule set per tenant. Rule
// sets are swapped whole, so a classification call always sees one
// consistent version.
type Registry struct {
	mu        sync.RWMutex
	extra     []Rule
	global    *RuleSet
	tenants   map[string]*RuleSet
	onReplace []func(tenant string)
}

// NewRegistry returns a registry holding only DefaultRules.
func NewRegistry() *Registry {
	global, _ := NewRuleSet(DefaultRules())
	return &Registry{
		global:  global,
		tenants: make(map[string]*RuleSet),
	}
}

// OnReplace registers fn to be called with the tenant name whenever that
// tenant's rule set is replaced.
func (r *Registry) OnReplace(fn func(tenant string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReplace = append(r.onReplace, fn)
}

// SetGlobalRules installs rules ahead of DefaultRules in the global set.
// Invalid rules are skipped and returned as *RuleError.
func (r *Registry) SetGlobalRules(rules []Rule) []error {
	global, errs := NewRuleSet(append(append([]Rule{}, rules...), DefaultRules()...))

	r.mu.Lock()
	r.extra = append([]Rule{}, rules...)
	r.global = global
	r.mu.Unlock()
	return errs
}

// SetTenantRules replaces a tenant's rule set. Invalid rules are skipped and
// returned as *RuleError. A nil or empty list removes the tenant's rules.
func (r *Registry) SetTenantRules(tenant string, rules []Rule) []error {
	rs, errs := NewRuleSet(rules)

	r.mu.Lock()
	if rs.Len() == 0 {
		delete(r.tenants, tenant)
	} else {
		r.tenants[tenant] = rs
	}
	hooks := append([]func(string){}, r.onReplace...)
	r.mu.Unlock()

	for _, fn := range hooks {
		fn(tenant)
	}
	return errs
}

// Global returns the global rule set.
func (r *Registry) Global() *RuleSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.global
}

// Tenant returns a tenant's rule set, or nil if it has none.
func (r *Registry) Tenant(tenant string) *RuleSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tenants[tenant]
}

// Tenants returns the names of tenants with rules, sorted.
func (r *Registry) Tenants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tenants))
	for name := range r.tenants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sets returns the rule sets consulted for tenant, tenant first.
func (r *Registry) sets(tenant string) []*RuleSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rs, ok := r.tenants[tenant]; ok && tenant != "" {
		return []*RuleSet{rs, r.global}
	}
	return []*RuleSet{r.global}
}

// LoadFile reads a rule file and installs its global and tenant rules.
// Tenants not named in the file keep their rules. Rule diagnostics are
// returned separately from the error, which is only set when the file
// cannot be read or parsed.
func (r *Registry) LoadFile(path string) ([]error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f RuleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	diags := r.SetGlobalRules(f.Global)

	tenants := make([]string, 0, len(f.Tenants))
	for name := range f.Tenants {
		tenants = append(tenants, name)
	}
	sort.Strings(tenants)
	for _, name := range tenants {
		for _, d := range r.SetTenantRules(name, f.Tenants[name]) {
			diags = append(diags, fmt.Errorf("tenant %s: %w", name, d))
		}
	}
	return diags, nil
}

// WriteFile saves the custom global rules and every tenant's rules. The
// built-in defaults are not written.
func (r *Registry) WriteFile(path string) error {
	r.mu.RLock()
	f := RuleFile{
		Global:  append([]Rule{}, r.extra...),
		Tenants: make(map[string][]Rule, len(r.tenants)),
	}
	for name, rs := range r.tenants {
		f.Tenants[name] = rs.Rules()
	}
	r.mu.RUnlock()

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
