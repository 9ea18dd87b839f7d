package coffeelint

import (
	"strings"
)

// directivePrefix marks an inline suppression comment:
//
//	x = 1;  # lintpipe: disable-line
//	x = 1;  # lintpipe: disable-line=no_trailing_semicolons
const directivePrefix = "lintpipe: disable-line"

// source is a file prepared for rule evaluation.
type source struct {
	text      string
	lines     []string
	inComment []bool
	disabled  []map[string]bool // nil entry: nothing disabled; empty map: all rules
}

func prepare(raw []byte, literate bool) *source {
	text := string(raw)
	if literate {
		text = invertLiterate(text)
	}
	lines := strings.Split(text, "\n")
	return &source{
		text:      text,
		lines:     lines,
		inComment: commentMap(lines),
		disabled:  directives(lines),
	}
}

// suppressed reports whether rule is disabled on a 1-indexed line.
func (s *source) suppressed(line int, rule string) bool {
	if line < 1 || line > len(s.disabled) {
		return false
	}
	d := s.disabled[line-1]
	if d == nil {
		return false
	}
	return len(d) == 0 || d[rule]
}

// invertLiterate turns literate source into plain source with the same line
// count: lines indented by four spaces or a tab are code and lose that
// indent; other non-blank lines become comments.
func invertLiterate(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		body := strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(body, "    "):
			lines[i] = line[4:]
		case strings.HasPrefix(body, "\t"):
			lines[i] = line[1:]
		case strings.TrimSpace(body) == "":
			lines[i] = strings.TrimLeft(line, " \t")
		default:
			lines[i] = "# " + line
		}
	}
	return strings.Join(lines, "\n")
}

// commentMap marks line comments and lines inside ### block comments.
func commentMap(lines []string) []bool {
	out := make([]bool, len(lines))
	inBlock := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isBlockDelimiter(trimmed) {
			out[i] = true
			// A one-line block comment (### x ###) opens and closes.
			if !(len(trimmed) > 6 && strings.HasSuffix(trimmed, "###")) {
				inBlock = !inBlock
			}
			continue
		}
		out[i] = inBlock || strings.HasPrefix(trimmed, "#")
	}
	return out
}

func isBlockDelimiter(trimmed string) bool {
	return strings.HasPrefix(trimmed, "###") && !strings.HasPrefix(trimmed, "####")
}

// directives parses disable-line comments.
func directives(lines []string) []map[string]bool {
	out := make([]map[string]bool, len(lines))
	for i, line := range lines {
		idx := strings.Index(line, directivePrefix)
		if idx < 0 || !strings.Contains(line[:idx], "#") {
			continue
		}
		rest := strings.TrimSpace(line[idx+len(directivePrefix):])
		set := make(map[string]bool)
		if strings.HasPrefix(rest, "=") {
			for _, name := range strings.Split(rest[1:], ",") {
				if name = strings.TrimSpace(name); name != "" {
					set[name] = true
				}
			}
		}
		out[i] = set
	}
	return out
}

// indentOf returns the leading whitespace of line.
func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
