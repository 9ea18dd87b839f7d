// Package lint is the pipeline adapter around a lint engine: it resolves the
// construction-time configuration once, then lints each file that flows
// through and attaches a pipeline.Annotation to it.
package lint

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/corey/lintpipe/internal/domain/pipeline"
	"github.com/corey/lintpipe/internal/ports"
)

// LiterateSuffixes are the file name endings that mark literate sources.
var LiterateSuffixes = []string{".litcoffee", ".coffee.md"}

// IsLiterate reports whether path names a literate source file.
func IsLiterate(path string) bool {
	for _, suffix := range LiterateSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// Plugin is the per-file lint transform.
type Plugin struct {
	engine   ports.Linter
	finder   ports.ConfigFinder
	resolved Resolved
	logger   *log.Logger
}

// New resolves cfg and returns a ready transform. Every configuration problem
// surfaces here, before any file is seen.
func New(cfg Config) (*Plugin, error) {
	if cfg.Engine == nil {
		return nil, pipeline.NewPluginError(pipeline.ErrConfiguration, "no lint engine configured")
	}

	resolved, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	finder := cfg.Finder
	if finder == nil {
		finder = noDiscovery{}
	}

	logger.Debug("lint adapter ready", "config", resolved.String())

	return &Plugin{
		engine:   cfg.Engine,
		finder:   finder,
		resolved: resolved,
		logger:   logger,
	}, nil
}

// NewFromArgs is New(ParseArgs(args...)) with the ports filled from base.
func NewFromArgs(base Config, args ...any) (*Plugin, error) {
	parsed, err := ParseArgs(args...)
	if err != nil {
		return nil, err
	}
	parsed.Registry = base.Registry
	parsed.Engine = base.Engine
	parsed.Finder = base.Finder
	parsed.Logger = base.Logger
	return New(parsed)
}

// Resolved returns the construction-time configuration.
func (p *Plugin) Resolved() Resolved {
	return p.resolved
}

// Transform lints one file.
func (p *Plugin) Transform(f *pipeline.File, out pipeline.Emitter) {
	if f.IsNull() {
		out.Push(f)
		return
	}
	if f.IsStream() {
		out.Error(pipeline.NewPluginError(pipeline.ErrUnsupportedInput, "Streaming not supported"))
		return
	}

	opts := p.resolved.Options
	if opts == nil {
		found, err := p.finder.FindConfig(f.Path)
		if err != nil {
			out.Error(pipeline.WrapPluginError(pipeline.ErrConfiguration, err,
				"could not find config for %s", f.Relative()))
			return
		}
		opts = found
	}

	literate := IsLiterate(f.Path)
	if p.resolved.Literate != nil {
		literate = *p.resolved.Literate
	}

	report, err := p.engine.Lint(f.Relative(), f.Contents, opts, literate)
	if err != nil {
		out.Error(err)
		return
	}

	summary := report.Summary()
	f.Lint = &pipeline.Annotation{
		Success:      summary.ErrorCount == 0,
		ErrorCount:   summary.ErrorCount,
		WarningCount: summary.WarningCount,
		Options:      opts,
		Literate:     literate,
		Results:      report,
	}
	p.logger.Debug("linted", "file", f.Relative(),
		"errors", summary.ErrorCount, "warnings", summary.WarningCount, "literate", literate)

	out.Push(f)
}

// noDiscovery is the finder used when none is wired: engine defaults only.
type noDiscovery struct{}

func (noDiscovery) FindConfig(string) (ports.Options, error) {
	return ports.Options{}, nil
}
