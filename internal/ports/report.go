package ports

import "sort"

// Options is the rule configuration bag handed to a Linter: rule name ->
// rule settings (typically a map with "level" plus rule parameters).
// The adapter never looks inside it.
//
// A nil Options means "unset". A non-nil empty Options means "explicitly
// empty": engine defaults apply and no config discovery happens.
type Options map[string]any

// Level is the severity a rule reports at.
type Level string

const (
	LevelError  Level = "error"
	LevelWarn   Level = "warn"
	LevelIgnore Level = "ignore"
)

// LevelFromName maps a config string to a Level.
// Returns false for unknown names.
func LevelFromName(name string) (Level, bool) {
	switch Level(name) {
	case LevelError, LevelWarn, LevelIgnore:
		return Level(name), true
	default:
		return "", false
	}
}

// Diagnostic is a single rule violation on one line.
type Diagnostic struct {
	Rule          string `json:"rule"`
	Level         Level  `json:"level"`
	Message       string `json:"message"`
	Description   string `json:"description,omitempty"`
	Context       string `json:"context,omitempty"`
	LineNumber    int    `json:"lineNumber"`
	LineNumberEnd int    `json:"lineNumberEnd,omitempty"`
}

// Summary holds the aggregate counts of a Report.
type Summary struct {
	ErrorCount   int `json:"errorCount"`
	WarningCount int `json:"warningCount"`
}

// Report is the result of one lint run: diagnostics grouped by path.
// Callers outside the engine and the reporters should only need Summary.
type Report struct {
	Paths map[string][]Diagnostic `json:"paths"`
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{Paths: make(map[string][]Diagnostic)}
}

// Add records diagnostics for a path. The path is registered even when
// diags is empty, so clean files still show up in reporter output.
func (r *Report) Add(path string, diags ...Diagnostic) {
	if r.Paths == nil {
		r.Paths = make(map[string][]Diagnostic)
	}
	r.Paths[path] = append(r.Paths[path], diags...)
}

// Summary counts errors and warnings across all paths.
func (r *Report) Summary() Summary {
	var s Summary
	if r == nil {
		return s
	}
	for _, diags := range r.Paths {
		for _, d := range diags {
			switch d.Level {
			case LevelError:
				s.ErrorCount++
			case LevelWarn:
				s.WarningCount++
			}
		}
	}
	return s
}

// HasError reports whether path has at least one error-level diagnostic.
func (r *Report) HasError(path string) bool {
	for _, d := range r.Paths[path] {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}

// SortedPaths returns the report's paths in lexical order.
func (r *Report) SortedPaths() []string {
	paths := make([]string, 0, len(r.Paths))
	for p := range r.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
