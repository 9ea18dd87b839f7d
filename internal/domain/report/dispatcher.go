// Package report turns reporter selectors into pipeline transforms.
//
// Two kinds of transform come out of a Dispatcher: policy transforms ("fail",
// "failOnWarning") that emit ErrLintFailed for files whose annotation does not
// pass, and publish transforms that hand a file's report to a ports.Reporter.
// Both push every file they receive, unchanged.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/corey/lintpipe/internal/domain/pipeline"
	"github.com/corey/lintpipe/internal/ports"
)

// Reserved selector names.
const (
	Fail          = "fail"
	FailOnWarning = "failOnWarning"

	// DefaultName is the reporter used for the empty selector.
	DefaultName = "stylish"
)

// Factory builds a reporter that writes to out.
type Factory func(out io.Writer) ports.Reporter

// ExternalResolver finds a reporter outside the registry, e.g. an executable
// on PATH. It returns false when name does not resolve.
type ExternalResolver func(name string, out io.Writer) (ports.Reporter, bool)

// Dispatcher resolves reporter selectors. The zero value is not usable; call
// NewDispatcher.
type Dispatcher struct {
	mu        sync.RWMutex
	factories map[string]Factory
	external  ExternalResolver
	out       io.Writer
	logger    *log.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithOutput sets the writer reporters print to. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(d *Dispatcher) { d.out = w }
}

// WithLogger sets the logger used for publish failures.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithExternal installs the fallback resolver for unregistered names.
func WithExternal(r ExternalResolver) Option {
	return func(d *Dispatcher) { d.external = r }
}

// WithFactories seeds the registry.
func WithFactories(factories map[string]Factory) Option {
	return func(d *Dispatcher) {
		for name, f := range factories {
			d.factories[name] = f
		}
	}
}

// NewDispatcher returns a dispatcher with an empty registry unless seeded.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		factories: make(map[string]Factory),
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard)
	}
	return d
}

// Register adds a named reporter. The policy names are reserved.
func (d *Dispatcher) Register(name string, f Factory) error {
	switch {
	case name == "" || name == Fail || name == FailOnWarning:
		return fmt.Errorf("reporter name %q is reserved", name)
	case f == nil:
		return fmt.Errorf("reporter %q: nil factory", name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.factories[name] = f
	return nil
}

// Names lists the registered reporter names in order.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.factories))
	for name := range d.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reporter returns the transform for a selector:
//
//	"fail"           emit ErrLintFailed when the annotation is not a success
//	"failOnWarning"  emit ErrLintFailed on any error or warning
//	""               publish with DefaultName
//	anything else    publish with the registered or external reporter
//
// An unresolvable name is an ErrConfiguration error.
func (d *Dispatcher) Reporter(name string) (pipeline.Transform, error) {
	switch name {
	case Fail:
		return policy{passes: passOnSuccess}, nil
	case FailOnWarning:
		return policy{passes: passOnClean}, nil
	case "":
		name = DefaultName
	}

	r, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	return d.With(r), nil
}

// resolve is the single lookup path: registry, then external, then error.
func (d *Dispatcher) resolve(name string) (ports.Reporter, error) {
	d.mu.RLock()
	f, ok := d.factories[name]
	d.mu.RUnlock()
	if ok {
		return f(d.out), nil
	}
	if d.external != nil {
		if r, ok := d.external(name, d.out); ok {
			d.logger.Debug("using external reporter", "name", name)
			return r, nil
		}
	}
	return nil, pipeline.NewPluginError(pipeline.ErrConfiguration, "%s is not a valid reporter", name)
}

// With returns a publish transform around a caller-supplied reporter.
func (d *Dispatcher) With(r ports.Reporter) pipeline.Transform {
	return publisher{reporter: r, logger: d.logger}
}

// policy emits a lint failure for files that do not pass.
type policy struct {
	passes func(*pipeline.Annotation) bool
}

func (p policy) Transform(f *pipeline.File, out pipeline.Emitter) {
	if f.Lint != nil && !p.passes(f.Lint) {
		out.Error(pipeline.NewPluginError(pipeline.ErrLintFailed, "lint failed for %s", f.Relative()))
	}
	out.Push(f)
}

func passOnSuccess(a *pipeline.Annotation) bool { return a.Success }
func passOnClean(a *pipeline.Annotation) bool   { return a.Clean() }

// publisher hands non-clean reports to a reporter.
type publisher struct {
	reporter ports.Reporter
	logger   *log.Logger
}

func (p publisher) Transform(f *pipeline.File, out pipeline.Emitter) {
	if f.Lint != nil && !f.Lint.Clean() {
		if err := p.reporter.Publish(f.Lint.Results); err != nil {
			p.logger.Warn("reporter failed", "file", f.Relative(), "err", err)
		}
	}
	out.Push(f)
}
