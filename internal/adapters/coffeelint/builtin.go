package coffeelint

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/corey/lintpipe/internal/domain/rules"
	"github.com/corey/lintpipe/internal/ports"
)

// lineRule is a built-in rule backed by a per-line check.
type lineRule struct {
	meta  ports.RuleMeta
	check func(line string, lc ports.LineContext) *ports.Finding
}

func (r lineRule) Meta() ports.RuleMeta { return r.meta }

func (r lineRule) LintLine(line string, lc ports.LineContext) *ports.Finding {
	return r.check(line, lc)
}

// sourceRule is a built-in rule that looks at the whole file.
type sourceRule struct {
	meta  ports.RuleMeta
	check func(src []byte, lines []string, cfg ports.RuleConfig) []ports.Finding
}

func (r sourceRule) Meta() ports.RuleMeta { return r.meta }

func (r sourceRule) LintSource(src []byte, lines []string, cfg ports.RuleConfig) []ports.Finding {
	return r.check(src, lines, cfg)
}

// Builtins returns constructors for the built-in rules.
func Builtins() []ports.RuleConstructor {
	return []ports.RuleConstructor{
		maxLineLength,
		noTabs,
		noTrailingWhitespace,
		noTrailingSemicolons,
		camelCaseClasses,
		lineEndings,
		eolLast,
		indentation,
		noThrowingStrings,
		noEmptyParamList,
	}
}

// DefaultRegistry returns a fresh registry holding the built-in rules.
func DefaultRegistry() *rules.Registry {
	return rules.NewRegistry(Builtins()...)
}

func maxLineLength() ports.Rule {
	return lineRule{
		meta: ports.RuleMeta{
			Name:        "max_line_length",
			Level:       ports.LevelError,
			Message:     "Line exceeds maximum allowed length",
			Description: "Long lines are hard to read and diff. Set limitComments to false to let comments run past the limit.",
			Params:      map[string]any{"value": 80, "limitComments": true},
		},
		check: func(line string, lc ports.LineContext) *ports.Finding {
			if lc.InComment && (lc.Literate || !lc.Config.Bool("limitComments", true)) {
				return nil
			}
			limit := lc.Config.Int("value", 80)
			n := utf8.RuneCountInString(strings.TrimSuffix(line, "\r"))
			if n <= limit {
				return nil
			}
			return &ports.Finding{Context: fmt.Sprintf("Length is %d, max is %d", n, limit)}
		},
	}
}

func noTabs() ports.Rule {
	return lineRule{
		meta: ports.RuleMeta{
			Name:        "no_tabs",
			Level:       ports.LevelError,
			Message:     "Line contains tab indentation",
			Description: "Indentation must use spaces. Tabs inside strings and after code are fine.",
		},
		check: func(line string, lc ports.LineContext) *ports.Finding {
			if strings.Contains(indentOf(line), "\t") {
				return &ports.Finding{}
			}
			return nil
		},
	}
}

func noTrailingWhitespace() ports.Rule {
	return lineRule{
		meta: ports.RuleMeta{
			Name:        "no_trailing_whitespace",
			Level:       ports.LevelError,
			Message:     "Line ends with trailing whitespace",
			Description: "Trailing whitespace is noise in diffs.",
			Params:      map[string]any{"allowed_in_comments": false, "allowed_in_empty_lines": true},
		},
		check: func(line string, lc ports.LineContext) *ports.Finding {
			body := strings.TrimSuffix(line, "\r")
			if body == strings.TrimRight(body, " \t") {
				return nil
			}
			if strings.TrimSpace(body) == "" {
				if lc.Config.Bool("allowed_in_empty_lines", true) {
					return nil
				}
				return &ports.Finding{}
			}
			if lc.InComment && lc.Config.Bool("allowed_in_comments", false) {
				return nil
			}
			return &ports.Finding{}
		},
	}
}

func noTrailingSemicolons() ports.Rule {
	return lineRule{
		meta: ports.RuleMeta{
			Name:        "no_trailing_semicolons",
			Level:       ports.LevelError,
			Message:     "Line contains a trailing semicolon",
			Description: "Statements end at the line break; a trailing semicolon is redundant.",
		},
		check: func(line string, lc ports.LineContext) *ports.Finding {
			if lc.InComment {
				return nil
			}
			code := strings.TrimRight(rules.CodePart(line), " \t\r")
			if strings.HasSuffix(code, ";") {
				return &ports.Finding{}
			}
			return nil
		},
	}
}

var (
	classDecl  = regexp.MustCompile(`^\s*class\s+([A-Za-z_$][\w$.]*)`)
	camelClass = regexp.MustCompile(`^_*[A-Z][A-Za-z0-9]*$`)
)

func camelCaseClasses() ports.Rule {
	return lineRule{
		meta: ports.RuleMeta{
			Name:        "camel_case_classes",
			Level:       ports.LevelError,
			Message:     "Class name should be UpperCamelCased",
			Description: "Class names read as types: Animal, not animal or an_animal.",
		},
		check: func(line string, lc ports.LineContext) *ports.Finding {
			if lc.InComment {
				return nil
			}
			m := classDecl.FindStringSubmatch(line)
			if m == nil {
				return nil
			}
			name := m[1]
			if i := strings.LastIndex(name, "."); i >= 0 {
				name = name[i+1:]
			}
			if camelClass.MatchString(name) {
				return nil
			}
			return &ports.Finding{Context: "class name: " + name}
		},
	}
}

func lineEndings() ports.Rule {
	return lineRule{
		meta: ports.RuleMeta{
			Name:        "line_endings",
			Level:       ports.LevelIgnore,
			Message:     "Line contains incorrect line endings",
			Description: "Enforces unix (LF) or windows (CRLF) line endings.",
			Params:      map[string]any{"value": "unix"},
		},
		check: func(line string, lc ports.LineContext) *ports.Finding {
			// The segment after the final newline has no ending at all.
			if lc.Number == len(lc.Lines) {
				return nil
			}
			want := lc.Config.String("value", "unix")
			crlf := strings.HasSuffix(line, "\r")
			switch want {
			case "unix":
				if !crlf {
					return nil
				}
			case "windows":
				if crlf {
					return nil
				}
			default:
				return &ports.Finding{Message: fmt.Sprintf("Unknown line ending type: %s", want)}
			}
			return &ports.Finding{Context: "Expected " + want}
		},
	}
}

func eolLast() ports.Rule {
	return sourceRule{
		meta: ports.RuleMeta{
			Name:        "eol_last",
			Level:       ports.LevelIgnore,
			Message:     "File does not end with a single newline",
			Description: "Files end with exactly one newline.",
		},
		check: func(src []byte, lines []string, cfg ports.RuleConfig) []ports.Finding {
			if len(src) == 0 {
				return nil
			}
			n := len(lines)
			if lines[n-1] != "" {
				return []ports.Finding{{Line: n}}
			}
			if n >= 2 && strings.TrimSpace(lines[n-2]) == "" {
				return []ports.Finding{{Line: n - 1, Context: "more than one trailing newline"}}
			}
			return nil
		},
	}
}

// continuation endings let the next line indent freely.
var continuation = []string{",", "(", "[", "{", "\\", "=", "+", "-", "*", "/", "&&", "||"}

func indentation() ports.Rule {
	return lineRule{
		meta: ports.RuleMeta{
			Name:        "indentation",
			Level:       ports.LevelError,
			Message:     "Line contains inconsistent indentation",
			Description: "Each new block is indented by exactly `value` spaces.",
			Params:      map[string]any{"value": 2},
		},
		check: func(line string, lc ports.LineContext) *ports.Finding {
			if lc.InComment || strings.TrimSpace(line) == "" {
				return nil
			}
			indent := indentOf(line)
			if strings.Contains(indent, "\t") {
				return nil
			}
			prev, ok := previousCode(lc.Lines, lc.Number-1)
			if !ok || strings.Contains(indentOf(prev), "\t") {
				return nil
			}

			step := lc.Config.Int("value", 2)
			got := len(indent) - len(indentOf(prev))
			if got <= 0 || got == step {
				return nil
			}
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, ".") {
				return nil
			}
			tail := strings.TrimRight(rules.CodePart(prev), " \t\r")
			for _, c := range continuation {
				if strings.HasSuffix(tail, c) {
					return nil
				}
			}
			return &ports.Finding{Context: fmt.Sprintf("Expected %d got %d", step, got)}
		},
	}
}

// previousCode finds the nearest earlier line that is code, given the
// 1-indexed number of the line before the current one.
func previousCode(lines []string, before int) (string, bool) {
	for i := before - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return lines[i], true
	}
	return "", false
}

var throwString = regexp.MustCompile(`\bthrow\s+["']`)

func noThrowingStrings() ports.Rule {
	return lineRule{
		meta: ports.RuleMeta{
			Name:        "no_throwing_strings",
			Level:       ports.LevelError,
			Message:     "Throwing strings is forbidden",
			Description: "Throw Error objects so callers get a stack trace.",
		},
		check: func(line string, lc ports.LineContext) *ports.Finding {
			if lc.InComment || !throwString.MatchString(rules.CodePart(line)) {
				return nil
			}
			return &ports.Finding{}
		},
	}
}

var emptyParams = regexp.MustCompile(`\(\s*\)\s*[-=]>`)

func noEmptyParamList() ports.Rule {
	return lineRule{
		meta: ports.RuleMeta{
			Name:        "no_empty_param_list",
			Level:       ports.LevelIgnore,
			Message:     "Empty parameter list is forbidden",
			Description: "Write -> instead of () ->.",
		},
		check: func(line string, lc ports.LineContext) *ports.Finding {
			if lc.InComment || !emptyParams.MatchString(rules.CodePart(line)) {
				return nil
			}
			return &ports.Finding{}
		},
	}
}
