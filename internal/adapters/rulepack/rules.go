package rulepack

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/corey/lintpipe/internal/adapters/ahocorasick"
	"github.com/corey/lintpipe/internal/ports"
)

// yamlRule is the YAML-serialized form of a pattern rule.
type yamlRule struct {
	ID          string   `yaml:"id"`
	Level       string   `yaml:"level"`
	Message     string   `yaml:"message"`
	Description string   `yaml:"description,omitempty"`
	Patterns    []string `yaml:"patterns"`
	Regex       string   `yaml:"regex,omitempty"`
	CodeOnly    bool     `yaml:"code_only,omitempty"`
}

// Builtin returns the embedded pack.
func Builtin() ([]ports.RuleConstructor, error) {
	return LoadFS(FS, "rules")
}

// LoadDir loads every *.yaml / *.yml file in a directory on disk.
func LoadDir(dir string) ([]ports.RuleConstructor, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS loads all YAML rule files in dir, in name order. Rule IDs must be
// unique across the whole set.
func LoadFS(fsys fs.FS, dir string) ([]ports.RuleConstructor, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read rules dir %q: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var ctors []ports.RuleConstructor
	seenIDs := make(map[string]string) // id -> source file

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isRuleFile(name) {
			continue
		}

		path := name
		if dir != "." {
			path = dir + "/" + name
		}
		loaded, err := loadFile(fsys, path, name, seenIDs)
		if err != nil {
			return nil, err
		}
		ctors = append(ctors, loaded...)
	}
	return ctors, nil
}

// Load loads a rule pack from a directory or a single YAML file.
func Load(path string) ([]ports.RuleConstructor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("rule pack: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	name := filepath.Base(path)
	return loadFile(os.DirFS(filepath.Dir(path)), name, name, make(map[string]string))
}

func isRuleFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// loadFile parses one YAML rule file. seenIDs carries IDs across files.
func loadFile(fsys fs.FS, path, name string, seenIDs map[string]string) ([]ports.RuleConstructor, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var yamlRules []yamlRule
	if err := yaml.Unmarshal(data, &yamlRules); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var ctors []ports.RuleConstructor
	for _, yr := range yamlRules {
		rule, err := compile(yr)
		if err != nil {
			return nil, fmt.Errorf("%s: rule %q: %w", name, yr.ID, err)
		}
		if prev, ok := seenIDs[yr.ID]; ok {
			return nil, fmt.Errorf("duplicate rule ID %q (first in %s, again in %s)", yr.ID, prev, name)
		}
		seenIDs[yr.ID] = name

		ctors = append(ctors, func() ports.Rule { return rule })
	}
	return ctors, nil
}

func compile(yr yamlRule) (*PatternRule, error) {
	if yr.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	level, ok := ports.LevelFromName(yr.Level)
	if !ok {
		return nil, fmt.Errorf("unknown level %q", yr.Level)
	}
	if len(yr.Patterns) == 0 {
		return nil, fmt.Errorf("no patterns")
	}
	for _, p := range yr.Patterns {
		if p == "" {
			return nil, fmt.Errorf("empty pattern")
		}
	}

	var re *regexp.Regexp
	if yr.Regex != "" {
		compiled, err := regexp.Compile(yr.Regex)
		if err != nil {
			return nil, fmt.Errorf("regex: %w", err)
		}
		re = compiled
	}

	def, err := yaml.Marshal(yr)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}
	sum := sha256.Sum256(def)

	return &PatternRule{
		meta: ports.RuleMeta{
			Name:        yr.ID,
			Level:       level,
			Message:     yr.Message,
			Description: yr.Description,
		},
		scanner:  ahocorasick.NewTextScanner(yr.Patterns),
		regex:    re,
		codeOnly: yr.CodeOnly,
		digest:   hex.EncodeToString(sum[:]),
	}, nil
}
