package rules

import (
	"fmt"

	"github.com/corey/lintpipe/internal/ports"
)

// Decode extracts the configuration for one rule from an options bag.
// Rule defaults are overlaid with whatever the bag sets for meta.Name:
//
//	{"max_line_length": {"value": 120, "level": "warn"}}
//
// A missing entry yields the defaults. A malformed entry or unknown level is
// an error.
func Decode(opts ports.Options, meta ports.RuleMeta) (ports.RuleConfig, error) {
	cfg := ports.RuleConfig{
		Level:  meta.Level,
		Params: make(map[string]any, len(meta.Params)),
	}
	for k, v := range meta.Params {
		cfg.Params[k] = v
	}

	raw, ok := opts[meta.Name]
	if !ok || raw == nil {
		return cfg, nil
	}

	entry, ok := raw.(map[string]any)
	if !ok {
		// Options built in Go code may use the named type.
		if o, isOpts := raw.(ports.Options); isOpts {
			entry = o
		} else {
			return cfg, fmt.Errorf("rule %q: options must be an object, got %T", meta.Name, raw)
		}
	}

	for k, v := range entry {
		if k == "level" {
			name, isStr := v.(string)
			if !isStr {
				return cfg, fmt.Errorf("rule %q: level must be a string, got %T", meta.Name, v)
			}
			level, known := ports.LevelFromName(name)
			if !known {
				return cfg, fmt.Errorf("rule %q: unknown level %q", meta.Name, name)
			}
			cfg.Level = level
			continue
		}
		cfg.Params[k] = v
	}
	return cfg, nil
}
