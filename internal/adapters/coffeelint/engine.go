// Package coffeelint is the built-in lint engine: line rules and whole-source
// rules evaluated over CoffeeScript (or inverted literate) text, plus the
// config finder that mirrors how the coffeelint CLI discovers settings.
package coffeelint

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/corey/lintpipe/internal/domain/rules"
	"github.com/corey/lintpipe/internal/ports"
)

// Engine implements ports.Linter over a rule registry.
type Engine struct {
	registry ports.RuleRegistry
	logger   *log.Logger
}

// NewEngine creates an engine that evaluates every rule in registry.
// Rules registered later are picked up on the next Lint call.
func NewEngine(registry ports.RuleRegistry, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{registry: registry, logger: logger}
}

// Lint runs all non-ignored rules and returns a report with a single path.
// A malformed options entry fails the whole file.
func (e *Engine) Lint(path string, src []byte, opts ports.Options, literate bool) (*ports.Report, error) {
	s := prepare(src, literate)

	var diags []ports.Diagnostic
	for _, rule := range e.registry.Rules() {
		meta := rule.Meta()
		cfg, err := rules.Decode(opts, meta)
		if err != nil {
			return nil, err
		}
		if cfg.Level == ports.LevelIgnore {
			continue
		}

		var findings []ports.Finding
		if lr, ok := rule.(ports.LineRule); ok {
			findings = append(findings, e.lintLines(lr, s, cfg, literate)...)
		}
		if sr, ok := rule.(ports.SourceRule); ok {
			findings = append(findings, sr.LintSource([]byte(s.text), s.lines, cfg)...)
		}

		for _, f := range findings {
			if s.suppressed(f.Line, meta.Name) {
				continue
			}
			diags = append(diags, toDiagnostic(meta, cfg, f))
		}
	}

	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].LineNumber != diags[j].LineNumber {
			return diags[i].LineNumber < diags[j].LineNumber
		}
		return diags[i].Rule < diags[j].Rule
	})

	report := ports.NewReport()
	report.Add(path, diags...)
	e.logger.Debug("engine finished", "path", path, "diagnostics", len(diags))
	return report, nil
}

func (e *Engine) lintLines(rule ports.LineRule, s *source, cfg ports.RuleConfig, literate bool) []ports.Finding {
	var out []ports.Finding
	for i, line := range s.lines {
		f := rule.LintLine(line, ports.LineContext{
			Number:    i + 1,
			Lines:     s.lines,
			InComment: s.inComment[i],
			Literate:  literate,
			Config:    cfg,
		})
		if f == nil {
			continue
		}
		if f.Line == 0 {
			f.Line = i + 1
		}
		out = append(out, *f)
	}
	return out
}

func toDiagnostic(meta ports.RuleMeta, cfg ports.RuleConfig, f ports.Finding) ports.Diagnostic {
	msg := f.Message
	if msg == "" {
		msg = meta.Message
	}
	return ports.Diagnostic{
		Rule:        meta.Name,
		Level:       cfg.Level,
		Message:     msg,
		Description: meta.Description,
		Context:     f.Context,
		LineNumber:  f.Line,
	}
}
