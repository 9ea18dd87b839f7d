// Package app wires together all adapters and domain logic.
// It builds one lint pipeline per run: glob source, lint adapter (optionally
// behind the report cache), then the configured reporter transforms.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/corey/lintpipe/internal/adapters/bbolt"
	"github.com/corey/lintpipe/internal/adapters/coffeelint"
	"github.com/corey/lintpipe/internal/adapters/fsglob"
	"github.com/corey/lintpipe/internal/adapters/reporters"
	"github.com/corey/lintpipe/internal/adapters/rulepack"
	"github.com/corey/lintpipe/internal/config"
	"github.com/corey/lintpipe/internal/domain/lint"
	"github.com/corey/lintpipe/internal/domain/pipeline"
	"github.com/corey/lintpipe/internal/domain/report"
	"github.com/corey/lintpipe/internal/domain/rules"
	"github.com/corey/lintpipe/internal/ports"
)

// Config is what New needs to build an App.
type Config struct {
	ProjectRoot string          // relative patterns, options and rule packs resolve here
	Settings    config.Settings // effective CLI settings
	Output      io.Writer       // reporter output (default: os.Stdout)
	Logger      *log.Logger     // optional
	Rules       []any           // extra custom rule constructors
}

// App is the top-level container wiring all components together.
type App struct {
	ProjectRoot string
	Paths       *Paths
	Settings    config.Settings

	Registry   *rules.Registry
	Engine     *coffeelint.Engine
	Finder     *coffeelint.Finder
	Cache      *bbolt.Cache // nil when caching is off
	Plugin     *lint.Plugin
	Dispatcher *report.Dispatcher
	Source     *fsglob.Source

	pipeline    *pipeline.Pipeline
	linter      ports.Linter
	customRules []any
	logger      *log.Logger
}

// New creates an App with all dependencies wired. Every configuration problem
// (unknown reporter, unreadable options file, bad rule pack) surfaces here.
func New(cfg Config) (*App, error) {
	root := cfg.ProjectRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	s := cfg.Settings

	registry, err := buildRegistry(root, s.RulePacks)
	if err != nil {
		return nil, err
	}
	engine := coffeelint.NewEngine(registry, logger)
	finder := coffeelint.NewFinder(coffeelint.WithFinderLogger(logger))

	a := &App{
		ProjectRoot: root,
		Paths:       NewPaths(root),
		Settings:    s,
		Registry:    registry,
		Engine:      engine,
		Finder:      finder,
		logger:      logger,
	}

	var linter ports.Linter = engine
	if s.Cache.Enabled {
		cache, err := a.openCache()
		if err != nil {
			return nil, err
		}
		a.Cache = cache
		linter = newCachedLinter(engine, cache, registry, logger)
	}

	a.Dispatcher = report.NewDispatcher(
		report.WithOutput(out),
		report.WithLogger(logger),
		report.WithFactories(reporters.Builtins()),
		report.WithExternal(reporters.Lookup),
	)
	a.linter = linter
	a.customRules = cfg.Rules
	if err := a.buildPipeline(); err != nil {
		a.Close()
		return nil, err
	}

	a.Source, err = fsglob.New(root, fsglob.WithLogger(logger))
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// buildPipeline reads the options file (if any), builds the lint plugin and
// chains the configured reporters behind it. On error the current pipeline
// is left in place.
func (a *App) buildPipeline() error {
	plugin, err := lint.New(lint.Config{
		OptionsPath: resolve(a.ProjectRoot, a.Settings.Options),
		Literate:    a.Settings.LiterateOverride(),
		Rules:       a.customRules,
		Registry:    a.Registry,
		Engine:      a.linter,
		Finder:      a.Finder,
		Logger:      a.logger,
	})
	if err != nil {
		return err
	}
	stages := []pipeline.Transform{plugin}
	for _, name := range a.Settings.Reporters() {
		t, err := a.Dispatcher.Reporter(name)
		if err != nil {
			return err
		}
		stages = append(stages, t)
	}
	a.Plugin = plugin
	a.pipeline = pipeline.New(stages...)
	return nil
}

// Reload re-reads the options file and rebuilds the pipeline. Custom rules
// are registered again, replacing themselves by name.
func (a *App) Reload() error {
	return a.buildPipeline()
}

// buildRegistry loads the built-in rules, the embedded pattern pack and any
// extra rule packs.
func buildRegistry(root string, packs []string) (*rules.Registry, error) {
	registry := coffeelint.DefaultRegistry()

	builtin, err := rulepack.Builtin()
	if err != nil {
		return nil, fmt.Errorf("load built-in rule pack: %w", err)
	}
	for _, ctor := range builtin {
		if err := registry.Register(ctor); err != nil {
			return nil, fmt.Errorf("register built-in rule: %w", err)
		}
	}

	for _, pack := range packs {
		ctors, err := rulepack.Load(resolve(root, pack))
		if err != nil {
			return nil, pipeline.WrapPluginError(pipeline.ErrConfiguration, err,
				"could not load rule pack %s", pack)
		}
		for _, ctor := range ctors {
			if err := registry.Register(ctor); err != nil {
				return nil, pipeline.WrapPluginError(pipeline.ErrConfiguration, err,
					"could not register rule from %s", pack)
			}
		}
	}
	return registry, nil
}

func (a *App) openCache() (*bbolt.Cache, error) {
	path := resolve(a.ProjectRoot, a.Settings.Cache.Path)
	if path == "" || path == a.Paths.Cache {
		path = a.Paths.Cache
		if err := a.Paths.EnsureDirs(); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	cache, err := bbolt.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if maxAge := a.Settings.Cache.MaxAge; maxAge > 0 {
		if n, err := cache.Prune(maxAge); err != nil {
			a.logger.Warn("cache prune failed", "err", err)
		} else if n > 0 {
			a.logger.Debug("cache pruned", "removed", n)
		}
	}
	return cache, nil
}

// Close releases the cache. Safe to call more than once.
func (a *App) Close() error {
	if a.Cache == nil {
		return nil
	}
	err := a.Cache.Close()
	a.Cache = nil
	return err
}

// Result is the outcome of one pipeline run.
type Result struct {
	Files  []*pipeline.File // files that left the pipeline
	Errors []error          // per-file errors, in order
}

// Summary totals the lint annotations of every file that left the pipeline.
func (r Result) Summary() ports.Summary {
	var s ports.Summary
	for _, f := range r.Files {
		if f.Lint == nil {
			continue
		}
		s.ErrorCount += f.Lint.ErrorCount
		s.WarningCount += f.Lint.WarningCount
	}
	return s
}

// LintFailed reports whether a fail policy rejected any file.
func (r Result) LintFailed() bool {
	for _, err := range r.Errors {
		if errors.Is(err, pipeline.ErrLintFailed) {
			return true
		}
	}
	return false
}

// FileErrors returns the errors that are not fail-policy rejections:
// unsupported input, config discovery and engine failures.
func (r Result) FileErrors() []error {
	var out []error
	for _, err := range r.Errors {
		if !errors.Is(err, pipeline.ErrLintFailed) {
			out = append(out, err)
		}
	}
	return out
}

// Lint expands patterns and runs every match through the pipeline.
func (a *App) Lint(ctx context.Context, patterns ...string) (Result, error) {
	files, err := a.Source.Files(patterns...)
	if err != nil {
		return Result{}, err
	}
	return a.Process(ctx, files), nil
}

// Process runs already-built files through the pipeline.
func (a *App) Process(ctx context.Context, files []*pipeline.File) Result {
	out, errs := a.pipeline.Run(ctx, fsglob.Feed(ctx, files))
	done, failed := pipeline.Drain(out, errs)
	a.logger.Debug("run finished", "in", len(files), "out", len(done), "errors", len(failed))
	return Result{Files: done, Errors: failed}
}
