// Package rules holds the rule registry and per-rule option decoding.
//
// A Registry is an ordinary value owned by whoever builds a pipeline. Two
// pipelines in one process can register different custom rules without
// seeing each other's.
package rules

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/corey/lintpipe/internal/ports"
)

// Registry implements ports.RuleRegistry.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]ports.Rule
}

// NewRegistry returns a registry preloaded with the given constructors.
// It panics if a built-in constructor is invalid; built-ins are programmer
// controlled.
func NewRegistry(builtins ...ports.RuleConstructor) *Registry {
	r := &Registry{rules: make(map[string]ports.Rule)}
	for _, ctor := range builtins {
		if err := r.Register(ctor); err != nil {
			panic(fmt.Sprintf("rules: invalid built-in rule: %v", err))
		}
	}
	return r
}

// Register builds the rule and stores it by name, replacing any rule with
// the same name.
func (r *Registry) Register(ctor ports.RuleConstructor) error {
	return r.RegisterAll(ctor)
}

// RegisterAll builds every rule before storing any of them, so one invalid
// constructor leaves the registry unchanged. Later constructors win on a
// name clash.
func (r *Registry) RegisterAll(ctors ...ports.RuleConstructor) error {
	built := make([]ports.Rule, 0, len(ctors))
	names := make([]string, 0, len(ctors))
	for _, ctor := range ctors {
		name, rule, err := build(ctor)
		if err != nil {
			return err
		}
		names = append(names, name)
		built = append(built, rule)
	}

	r.mu.Lock()
	for i, rule := range built {
		r.rules[names[i]] = rule
	}
	r.mu.Unlock()
	return nil
}

func build(ctor ports.RuleConstructor) (string, ports.Rule, error) {
	if ctor == nil {
		return "", nil, fmt.Errorf("nil rule constructor")
	}
	rule := ctor()
	if rule == nil {
		return "", nil, fmt.Errorf("rule constructor returned nil")
	}
	meta := rule.Meta()
	name := strings.TrimSpace(meta.Name)
	if name == "" {
		return "", nil, fmt.Errorf("rule has no name")
	}
	if _, ok := ports.LevelFromName(string(meta.Level)); !ok {
		return "", nil, fmt.Errorf("rule %q: unknown default level %q", name, meta.Level)
	}
	_, isLine := rule.(ports.LineRule)
	_, isSource := rule.(ports.SourceRule)
	if !isLine && !isSource {
		return "", nil, fmt.Errorf("rule %q implements neither LintLine nor LintSource", name)
	}
	return name, rule, nil
}

// Rules returns every registered rule sorted by name.
func (r *Registry) Rules() []ports.Rule {
	r.mu.RLock()
	out := make([]ports.Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Meta().Name < out[j].Meta().Name
	})
	return out
}

// Get returns a rule by name.
func (r *Registry) Get(name string) (ports.Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[strings.TrimSpace(name)]
	return rule, ok
}

// Names returns the sorted rule names.
func (r *Registry) Names() []string {
	rs := r.Rules()
	names := make([]string, len(rs))
	for i, rule := range rs {
		names[i] = rule.Meta().Name
	}
	return names
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}
