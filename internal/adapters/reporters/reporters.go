// Package reporters holds the built-in lint report formatters and the
// external-command reporter. Every reporter writes to the io.Writer it was
// built with and is safe to call once per file report.
package reporters

import (
	"io"
	"sort"

	"github.com/corey/lintpipe/internal/domain/report"
	"github.com/corey/lintpipe/internal/ports"
)

// Built-in reporter names.
const (
	NameDefault    = "default"
	NameStylish    = "stylish"
	NameRaw        = "raw"
	NameCSV        = "csv"
	NameJSLint     = "jslint"
	NameCheckstyle = "checkstyle"
)

// Builtins returns a fresh factory map for every built-in reporter.
func Builtins() map[string]report.Factory {
	return map[string]report.Factory{
		NameDefault:    func(out io.Writer) ports.Reporter { return NewDefault(out) },
		NameStylish:    func(out io.Writer) ports.Reporter { return NewStylish(out) },
		NameRaw:        func(out io.Writer) ports.Reporter { return &Raw{out: out} },
		NameCSV:        func(out io.Writer) ports.Reporter { return &CSV{out: out} },
		NameJSLint:     func(out io.Writer) ports.Reporter { return &JSLint{out: out} },
		NameCheckstyle: func(out io.Writer) ports.Reporter { return &Checkstyle{out: out} },
	}
}

// Names lists the built-in reporter names in order.
func Names() []string {
	names := make([]string, 0, 6)
	for name := range Builtins() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// counts returns totals plus the number of paths that have any diagnostic.
func counts(r *ports.Report) (errs, warns, files int) {
	for _, diags := range r.Paths {
		if len(diags) > 0 {
			files++
		}
		for _, d := range diags {
			switch d.Level {
			case ports.LevelError:
				errs++
			case ports.LevelWarn:
				warns++
			}
		}
	}
	return errs, warns, files
}

func endLine(d ports.Diagnostic) int {
	if d.LineNumberEnd > 0 {
		return d.LineNumberEnd
	}
	return d.LineNumber
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
