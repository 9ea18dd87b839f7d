package ports

import "fmt"

// RuleMeta describes a rule and its defaults.
type RuleMeta struct {
	Name        string         // unique identifier, e.g. "max_line_length"
	Level       Level          // default level
	Message     string         // short message used for diagnostics
	Description string         // longer explanation, shown by some reporters
	Params      map[string]any // default parameters, e.g. {"value": 80}
}

// Rule is a lint rule. Every rule also implements LineRule, SourceRule, or both.
type Rule interface {
	Meta() RuleMeta
}

// Finding is what a rule reports. The engine fills in the rule name, level and
// message defaults.
type Finding struct {
	Line    int    // 1-indexed; 0 means "use the line under inspection"
	Message string // overrides RuleMeta.Message when non-empty
	Context string
}

// LineContext is handed to line rules for each line of a file.
type LineContext struct {
	Number    int      // 1-indexed line number
	Lines     []string // all lines of the (possibly inverted) source
	InComment bool     // line is a comment or inside a block comment
	Literate  bool
	Config    RuleConfig
}

// LineRule inspects one line at a time.
type LineRule interface {
	Rule
	LintLine(line string, lc LineContext) *Finding
}

// SourceRule inspects a whole file at once.
type SourceRule interface {
	Rule
	LintSource(source []byte, lines []string, cfg RuleConfig) []Finding
}

// Fingerprinter is implemented by rules whose behavior comes from data, such
// as rule packs. The fingerprint changes whenever that data does.
type Fingerprinter interface {
	Fingerprint() string
}

// RuleConstructor builds a rule. Custom rules are supplied as constructors so
// every engine instance gets its own rule value.
type RuleConstructor func() Rule

// RuleRegistry holds the rules an engine evaluates. It is owned by whoever
// builds the pipeline, so separate pipelines do not share registrations.
type RuleRegistry interface {
	// Register adds (or replaces, by name) a rule.
	Register(ctor RuleConstructor) error

	// RegisterAll registers every constructor, or none if any is invalid.
	RegisterAll(ctors ...RuleConstructor) error

	// Rules returns the registered rules in name order.
	Rules() []Rule
}

// RuleConfig is the decoded per-rule slice of an Options bag.
type RuleConfig struct {
	Level  Level
	Params map[string]any
}

// Int returns an integer parameter, or def when missing or not numeric.
// Numbers decoded from JSON arrive as float64.
func (c RuleConfig) Int(key string, def int) int {
	switch v := c.Params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case uint64:
		return int(v)
	default:
		return def
	}
}

// Bool returns a boolean parameter, or def when missing.
func (c RuleConfig) Bool(key string, def bool) bool {
	if v, ok := c.Params[key].(bool); ok {
		return v
	}
	return def
}

// String returns a string parameter, or def when missing.
func (c RuleConfig) String(key string, def string) string {
	if v, ok := c.Params[key].(string); ok {
		return v
	}
	if v, ok := c.Params[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return def
}
