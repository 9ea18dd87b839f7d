package lint

import (
	"errors"
	"strings"
	"testing"

	"github.com/corey/lintpipe/internal/domain/pipeline"
	"github.com/corey/lintpipe/internal/domain/rules"
	"github.com/corey/lintpipe/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Per-File Linter Adapter: null/stream checks, option resolution, annotation
// Expectation: null files pass untouched, streams are rejected, everything
// else is linted once and annotated with the report summary.
// =============================================================================

// fakeEngine records calls and returns a canned report.
type fakeEngine struct {
	calls    []fakeCall
	errors   int
	warnings int
	err      error
}

type fakeCall struct {
	path     string
	source   string
	opts     ports.Options
	literate bool
}

func (e *fakeEngine) Lint(path string, source []byte, opts ports.Options, literate bool) (*ports.Report, error) {
	e.calls = append(e.calls, fakeCall{path: path, source: string(source), opts: opts, literate: literate})
	if e.err != nil {
		return nil, e.err
	}
	r := ports.NewReport()
	r.Add(path)
	for i := 0; i < e.errors; i++ {
		r.Add(path, ports.Diagnostic{Rule: "fake", Level: ports.LevelError, LineNumber: i + 1})
	}
	for i := 0; i < e.warnings; i++ {
		r.Add(path, ports.Diagnostic{Rule: "fake", Level: ports.LevelWarn, LineNumber: i + 1})
	}
	return r, nil
}

// mapFinder serves options per path and counts lookups.
type mapFinder struct {
	byPath  map[string]ports.Options
	lookups int
	err     error
}

func (m *mapFinder) FindConfig(path string) (ports.Options, error) {
	m.lookups++
	if m.err != nil {
		return nil, m.err
	}
	if o, ok := m.byPath[path]; ok {
		return o, nil
	}
	return ports.Options{}, nil
}

func run(t *testing.T, p *Plugin, files ...*pipeline.File) ([]*pipeline.File, []error) {
	t.Helper()
	return pipeline.New(p).Collect(files)
}

func coffee(path, body string) *pipeline.File {
	return &pipeline.File{Base: "/src", Path: "/src/" + path, Contents: []byte(body)}
}

func TestPlugin_NullFilePassesThrough(t *testing.T) {
	engine := &fakeEngine{}
	p, err := New(Config{Engine: engine})
	require.NoError(t, err)

	null := &pipeline.File{Path: "/src/dir"}
	files, errs := run(t, p, null)

	assert.Empty(t, errs)
	require.Len(t, files, 1)
	assert.Same(t, null, files[0])
	assert.Nil(t, files[0].Lint, "null files are not annotated")
	assert.Empty(t, engine.calls, "engine must not run on null files")
}

func TestPlugin_StreamRejected(t *testing.T) {
	engine := &fakeEngine{}
	p, err := New(Config{Engine: engine})
	require.NoError(t, err)

	streamed := &pipeline.File{Path: "/src/a.coffee", Stream: strings.NewReader("a = 1")}
	next := coffee("b.coffee", "b = 1")
	files, errs := run(t, p, streamed, next)

	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], pipeline.ErrUnsupportedInput))
	assert.Equal(t, "lintpipe: Streaming not supported", errs[0].Error())

	require.Len(t, files, 1, "pipeline keeps going after a stream error")
	assert.Same(t, next, files[0])
	require.Len(t, engine.calls, 1)
	assert.Equal(t, "b.coffee", engine.calls[0].path)
}

func TestPlugin_AnnotatesSummary(t *testing.T) {
	engine := &fakeEngine{errors: 2, warnings: 1}
	opts := ports.Options{"no_tabs": map[string]any{"level": "error"}}
	p, err := New(Config{Engine: engine, Options: Inline(opts)})
	require.NoError(t, err)

	files, errs := run(t, p, coffee("app.coffee", "x = 1\n"))
	require.Empty(t, errs)
	require.Len(t, files, 1)

	a := files[0].Lint
	require.NotNil(t, a)
	assert.False(t, a.Success)
	assert.Equal(t, 2, a.ErrorCount)
	assert.Equal(t, 1, a.WarningCount)
	assert.Equal(t, opts, a.Options)
	assert.False(t, a.Literate)
	require.NotNil(t, a.Results)
	assert.Len(t, a.Results.Paths["app.coffee"], 3)

	require.Len(t, engine.calls, 1)
	assert.Equal(t, "x = 1\n", engine.calls[0].source)
}

func TestPlugin_SuccessWithWarningsOnly(t *testing.T) {
	p, err := New(Config{Engine: &fakeEngine{warnings: 3}})
	require.NoError(t, err)

	files, _ := run(t, p, coffee("w.coffee", "w"))
	require.Len(t, files, 1)
	assert.True(t, files[0].Lint.Success, "warnings alone do not fail")
	assert.Equal(t, 3, files[0].Lint.WarningCount)
}

func TestPlugin_DiscoversOptionsWhenUnset(t *testing.T) {
	discovered := ports.Options{"max_line_length": map[string]any{"value": 100}}
	finder := &mapFinder{byPath: map[string]ports.Options{"/src/a.coffee": discovered}}
	engine := &fakeEngine{}

	p, err := New(Config{Engine: engine, Finder: finder})
	require.NoError(t, err)

	files, errs := run(t, p, coffee("a.coffee", "a"), coffee("b.coffee", "b"))
	require.Empty(t, errs)
	require.Len(t, files, 2)

	assert.Equal(t, 2, finder.lookups, "discovery runs per file")
	assert.Equal(t, discovered, engine.calls[0].opts)
	assert.Equal(t, ports.Options{}, engine.calls[1].opts)
}

func TestPlugin_ExplicitOptionsSkipDiscovery(t *testing.T) {
	finder := &mapFinder{}
	p, err := New(Config{Engine: &fakeEngine{}, Finder: finder, Options: Inline(ports.Options{})})
	require.NoError(t, err)

	_, errs := run(t, p, coffee("a.coffee", "a"))
	require.Empty(t, errs)
	assert.Zero(t, finder.lookups, "explicitly empty options are not unset")
}

func TestPlugin_DiscoveryIsIdempotent(t *testing.T) {
	finder := &mapFinder{byPath: map[string]ports.Options{
		"/src/a.coffee": {"no_tabs": map[string]any{"level": "warn"}},
	}}
	engine := &fakeEngine{}
	p, err := New(Config{Engine: engine, Finder: finder})
	require.NoError(t, err)

	run(t, p, coffee("a.coffee", "a"))
	run(t, p, coffee("a.coffee", "a"))

	require.Len(t, engine.calls, 2)
	assert.Equal(t, engine.calls[0].opts, engine.calls[1].opts)
}

func TestPlugin_FinderErrorEmitted(t *testing.T) {
	finder := &mapFinder{err: errors.New("bad coffeelint.json")}
	engine := &fakeEngine{}
	p, err := New(Config{Engine: engine, Finder: finder})
	require.NoError(t, err)

	files, errs := run(t, p, coffee("a.coffee", "a"))
	assert.Empty(t, files)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "bad coffeelint.json")
	assert.Empty(t, engine.calls)
}

func TestPlugin_LiterateDerivation(t *testing.T) {
	engine := &fakeEngine{}
	p, err := New(Config{Engine: engine})
	require.NoError(t, err)

	run(t, p,
		coffee("doc.litcoffee", "x"),
		coffee("doc.coffee.md", "x"),
		coffee("plain.coffee", "x"),
		coffee("readme.md", "x"),
	)

	require.Len(t, engine.calls, 4)
	assert.True(t, engine.calls[0].literate)
	assert.True(t, engine.calls[1].literate)
	assert.False(t, engine.calls[2].literate)
	assert.False(t, engine.calls[3].literate)
}

func TestPlugin_LiterateOverride(t *testing.T) {
	engine := &fakeEngine{}
	off := false
	p, err := New(Config{Engine: engine, Literate: &off})
	require.NoError(t, err)

	files, _ := run(t, p, coffee("doc.litcoffee", "x"))
	require.Len(t, engine.calls, 1)
	assert.False(t, engine.calls[0].literate)
	assert.False(t, files[0].Lint.Literate)
}

func TestPlugin_EngineErrorPropagatesUnwrapped(t *testing.T) {
	boom := errors.New(`rule "no_tabs": unknown level "fatal"`)
	p, err := New(Config{Engine: &fakeEngine{err: boom}})
	require.NoError(t, err)

	files, errs := run(t, p, coffee("a.coffee", "a"))
	assert.Empty(t, files)
	require.Len(t, errs, 1)
	assert.Same(t, boom, errs[0])
}

func TestNew_RequiresEngine(t *testing.T) {
	_, err := New(Config{})
	assert.True(t, errors.Is(err, pipeline.ErrConfiguration))
}

func TestNew_BadRuleNeverBuildsPlugin(t *testing.T) {
	engine := &fakeEngine{}
	p, err := NewFromArgs(Config{Engine: engine, Registry: rules.NewRegistry()}, []any{42})

	require.Error(t, err)
	assert.Nil(t, p)
	assert.Empty(t, engine.calls)
}

func TestNewFromArgs_WiresPorts(t *testing.T) {
	reg := rules.NewRegistry()
	engine := &fakeEngine{}
	p, err := NewFromArgs(Config{Engine: engine, Registry: reg}, []any{newCustom("mine")}, true)
	require.NoError(t, err)

	_, ok := reg.Get("mine")
	assert.True(t, ok)
	require.NotNil(t, p.Resolved().Literate)
	assert.True(t, *p.Resolved().Literate)
	assert.Nil(t, p.Resolved().Options)
}

func TestIsLiterate(t *testing.T) {
	assert.True(t, IsLiterate("a/b.litcoffee"))
	assert.True(t, IsLiterate("a/b.coffee.md"))
	assert.False(t, IsLiterate("a/b.coffee"))
	assert.False(t, IsLiterate("a/b.md"))
	assert.False(t, IsLiterate("a/litcoffee"))
}
