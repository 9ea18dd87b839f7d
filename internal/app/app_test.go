package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/lintpipe/internal/config"
	"github.com/corey/lintpipe/internal/domain/pipeline"
	"github.com/corey/lintpipe/internal/ports"
)

// =============================================================================
// End-to-end: glob source, lint adapter, reporters, fail policies
// Expectation: a project on disk lints with the configured options, the
// reporters see annotated files, and fail policies name the failing file.
// =============================================================================

// isolate keeps the user's home and env config out of discovery.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("COFFEELINT_CONFIG", "")
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
	return root
}

func settings(mut func(*config.Settings)) config.Settings {
	s := config.Defaults()
	s.Reporter = config.ReporterNone
	if mut != nil {
		mut(&s)
	}
	return s
}

func newApp(t *testing.T, root string, s config.Settings, out *bytes.Buffer) *App {
	t.Helper()
	cfg := Config{ProjectRoot: root, Settings: s}
	if out != nil {
		cfg.Output = out
	}
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestLint_OptionsFileAndFailPolicy(t *testing.T) {
	isolate(t)
	root := writeProject(t, map[string]string{
		"lint.json":      `{"no_tabs": {"level": "error"}}`,
		"src/a.coffee":   "x = ->\n\ty\n",
		"src/ok.coffee":  "y = 1\n",
		"src/readme.txt": "not linted\n",
	})
	a := newApp(t, root, settings(func(s *config.Settings) {
		s.Options = "lint.json"
		s.Fail = config.FailError
	}), nil)

	res, err := a.Lint(context.Background(), "src/**/*.coffee")
	require.NoError(t, err)

	require.Len(t, res.Files, 2, "fail policies still pass files along")
	bad := res.Files[0]
	require.NotNil(t, bad.Lint)
	assert.Equal(t, "a.coffee", bad.Relative())
	assert.False(t, bad.Lint.Success)
	assert.Equal(t, 1, bad.Lint.ErrorCount)
	assert.Equal(t, 0, bad.Lint.WarningCount)
	assert.Equal(t, ports.Options{"no_tabs": map[string]any{"level": "error"}}, bad.Lint.Options)
	require.Len(t, bad.Lint.Results.Paths["a.coffee"], 1)
	assert.Equal(t, "no_tabs", bad.Lint.Results.Paths["a.coffee"][0].Rule)
	assert.Equal(t, 2, bad.Lint.Results.Paths["a.coffee"][0].LineNumber)

	assert.True(t, res.Files[1].Lint.Success)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "lintpipe: lint failed for a.coffee", res.Errors[0].Error())
	assert.True(t, res.LintFailed())
	assert.Empty(t, res.FileErrors())
	assert.Equal(t, ports.Summary{ErrorCount: 1}, res.Summary())
}

func TestLint_DiscoveredConfigAndReporter(t *testing.T) {
	isolate(t)
	root := writeProject(t, map[string]string{
		"src/coffeelint.json": `{"max_line_length": {"value": 10, "level": "warn"}}`,
		"src/long.coffee":     "x = 'a long line'\n",
	})
	var out bytes.Buffer
	a := newApp(t, root, settings(func(s *config.Settings) {
		s.Reporter = "raw"
		s.Fail = config.FailWarning
	}), &out)

	res, err := a.Lint(context.Background(), "src/*.coffee")
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.True(t, res.Files[0].Lint.Success, "warnings alone do not fail the lint")
	assert.Equal(t, 1, res.Files[0].Lint.WarningCount)

	var raw map[string][]ports.Diagnostic
	require.NoError(t, json.Unmarshal(out.Bytes(), &raw))
	require.Len(t, raw["long.coffee"], 1)
	assert.Equal(t, "max_line_length", raw["long.coffee"][0].Rule)
	assert.Equal(t, "Length is 17, max is 10", raw["long.coffee"][0].Context)

	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], pipeline.ErrLintFailed))
}

func TestLint_BuiltinPatternPack(t *testing.T) {
	isolate(t)
	root := writeProject(t, map[string]string{"a.coffee": "debugger\n"})
	a := newApp(t, root, settings(nil), nil)

	res, err := a.Lint(context.Background(), "a.coffee")
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	diags := res.Files[0].Lint.Results.Paths["a.coffee"]
	require.Len(t, diags, 1)
	assert.Equal(t, "no_debugger", diags[0].Rule)
	assert.Equal(t, ports.LevelWarn, diags[0].Level)
}

func TestLint_ExtraRulePack(t *testing.T) {
	isolate(t)
	root := writeProject(t, map[string]string{
		"rules/team.yaml": "- id: no_alert\n  level: error\n  message: alert call\n  patterns: [\"alert(\"]\n",
		"a.coffee":        "alert('x')\n",
	})
	a := newApp(t, root, settings(func(s *config.Settings) {
		s.RulePacks = []string{"rules"}
	}), nil)

	assert.Contains(t, a.Registry.Names(), "no_alert")
	res, err := a.Lint(context.Background(), "*.coffee")
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, 1, res.Files[0].Lint.ErrorCount)
}

// todoRule flags lines containing TODO.
type todoRule struct{}

func (todoRule) Meta() ports.RuleMeta {
	return ports.RuleMeta{Name: "no_todo", Level: ports.LevelWarn, Message: "TODO left in code"}
}

func (todoRule) LintLine(line string, _ ports.LineContext) *ports.Finding {
	if strings.Contains(line, "TODO") {
		return &ports.Finding{}
	}
	return nil
}

func TestLint_CustomRule(t *testing.T) {
	isolate(t)
	root := writeProject(t, map[string]string{"a.coffee": "x = 1 # TODO\n"})
	a, err := New(Config{
		ProjectRoot: root,
		Settings:    settings(nil),
		Rules:       []any{func() ports.Rule { return todoRule{} }},
	})
	require.NoError(t, err)
	defer a.Close()

	res, err := a.Lint(context.Background(), "a.coffee")
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, 1, res.Files[0].Lint.WarningCount)
}

func TestLint_StreamAndEngineErrors(t *testing.T) {
	isolate(t)
	root := writeProject(t, map[string]string{
		"bad.json": `{"no_tabs": {"level": "loud"}}`,
	})
	a := newApp(t, root, settings(func(s *config.Settings) {
		s.Options = "bad.json"
		s.Fail = config.FailError
	}), nil)

	res := a.Process(context.Background(), []*pipeline.File{
		{Base: root, Path: filepath.Join(root, "s.coffee"), Stream: strings.NewReader("x")},
		{Base: root, Path: filepath.Join(root, "a.coffee"), Contents: []byte("x = 1\n")},
		{Base: root, Path: filepath.Join(root, "dir")},
	})

	require.Len(t, res.Errors, 2)
	assert.True(t, errors.Is(res.Errors[0], pipeline.ErrUnsupportedInput))
	assert.Equal(t, "lintpipe: Streaming not supported", res.Errors[0].Error())
	assert.False(t, errors.Is(res.Errors[1], pipeline.ErrLintFailed), "engine errors pass through as-is")
	assert.False(t, res.LintFailed())
	assert.Len(t, res.FileErrors(), 2)

	require.Len(t, res.Files, 1, "only the null file survives")
	assert.True(t, res.Files[0].IsNull())
	assert.Nil(t, res.Files[0].Lint)
}

func TestNew_ConfigurationErrors(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	t.Setenv("PATH", t.TempDir())

	tests := []struct {
		name string
		mut  func(*config.Settings)
		msg  string
	}{
		{"unknown reporter", func(s *config.Settings) { s.Reporter = "nope" }, "lintpipe: nope is not a valid reporter"},
		{"missing options file", func(s *config.Settings) { s.Options = "missing.json" }, "could not load config from file"},
		{"missing rule pack", func(s *config.Settings) { s.RulePacks = []string{"missing"} }, "could not load rule pack missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{ProjectRoot: root, Settings: settings(tt.mut)})
			require.Error(t, err)
			assert.True(t, errors.Is(err, pipeline.ErrConfiguration), err.Error())
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLint_MissingLiteral(t *testing.T) {
	isolate(t)
	a := newApp(t, t.TempDir(), settings(nil), nil)
	_, err := a.Lint(context.Background(), "nope.coffee")
	assert.Error(t, err)
}

func TestLint_LiterateOverride(t *testing.T) {
	isolate(t)
	// Prose longer than 80 characters is fine in literate mode.
	prose := strings.TrimSpace(strings.Repeat("word ", 30)) + "\n\n    x = 1\n"
	root := writeProject(t, map[string]string{"doc.coffee": prose})

	a := newApp(t, root, settings(func(s *config.Settings) { s.Literate = config.LiterateTrue }), nil)
	res, err := a.Lint(context.Background(), "doc.coffee")
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.True(t, res.Files[0].Lint.Literate)
	assert.Equal(t, 0, res.Files[0].Lint.ErrorCount)

	b := newApp(t, root, settings(func(s *config.Settings) { s.Literate = config.LiterateFalse }), nil)
	res, err = b.Lint(context.Background(), "doc.coffee")
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.False(t, res.Files[0].Lint.Literate)
	assert.Positive(t, res.Files[0].Lint.ErrorCount)
}

func TestLint_CacheServesRepeatRuns(t *testing.T) {
	isolate(t)
	root := writeProject(t, map[string]string{"a.coffee": "x = ->\n\ty\n"})
	a := newApp(t, root, settings(func(s *config.Settings) {
		s.Cache.Enabled = true
		s.Cache.Path = "cache/reports.db"
	}), nil)
	require.NotNil(t, a.Cache)

	first, err := a.Lint(context.Background(), "a.coffee")
	require.NoError(t, err)
	second, err := a.Lint(context.Background(), "a.coffee")
	require.NoError(t, err)

	assert.Equal(t, first.Summary(), second.Summary())
	assert.Equal(t, first.Files[0].Lint.Results, second.Files[0].Lint.Results)

	n, err := a.Cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(root, "cache", "reports.db"))

	require.NoError(t, a.Close())
	require.NoError(t, a.Close(), "double close is safe")
}

func TestLint_CacheSeesRulePackEdits(t *testing.T) {
	isolate(t)
	root := writeProject(t, map[string]string{
		"rules/team.yaml": "- id: no_alert\n  level: error\n  message: dialog call\n  patterns: [\"alert(\"]\n",
		"a.coffee":        "confirm('x')\n",
	})
	s := settings(func(s *config.Settings) {
		s.RulePacks = []string{"rules"}
		s.Cache.Enabled = true
		s.Cache.Path = "cache/reports.db"
	})

	first := newApp(t, root, s, nil)
	res, err := first.Lint(context.Background(), "a.coffee")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Summary().ErrorCount)
	require.NoError(t, first.Close())

	// Same rule id, different patterns.
	pack := filepath.Join(root, "rules", "team.yaml")
	require.NoError(t, os.WriteFile(pack, []byte("- id: no_alert\n  level: error\n  message: dialog call\n  patterns: [\"confirm(\"]\n"), 0644))

	second := newApp(t, root, s, nil)
	res, err = second.Lint(context.Background(), "a.coffee")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary().ErrorCount, "edited pack must not hit the old report")

	n, err := second.Cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
