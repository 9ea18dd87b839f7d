package coffeelint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/corey/lintpipe/internal/domain/lint"
	"github.com/corey/lintpipe/internal/ports"
)

// ConfigFileNames are checked, in order, in each directory while walking up.
var ConfigFileNames = []string{
	"coffeelint.json",
	".coffeelintrc.yaml",
	".coffeelintrc.yml",
	".coffeelintrc.toml",
}

const (
	packageJSON    = "package.json"
	packageJSONKey = "coffeelintConfig"
	envConfig      = "COFFEELINT_CONFIG"
	homeConfig     = "coffeelint.json"
)

// Finder discovers options the way the coffeelint CLI does: nearest config
// file walking up from the linted file, then $COFFEELINT_CONFIG, then
// ~/coffeelint.json. Results are cached per starting directory.
type Finder struct {
	mu     sync.Mutex
	byDir  map[string]ports.Options
	getenv func(string) string
	home   func() (string, error)
	logger *log.Logger
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithEnv replaces os.Getenv.
func WithEnv(getenv func(string) string) FinderOption {
	return func(f *Finder) { f.getenv = getenv }
}

// WithHome replaces os.UserHomeDir.
func WithHome(home func() (string, error)) FinderOption {
	return func(f *Finder) { f.home = home }
}

// WithFinderLogger sets the logger.
func WithFinderLogger(l *log.Logger) FinderOption {
	return func(f *Finder) { f.logger = l }
}

// NewFinder creates a finder.
func NewFinder(opts ...FinderOption) *Finder {
	f := &Finder{
		byDir:  make(map[string]ports.Options),
		getenv: os.Getenv,
		home:   os.UserHomeDir,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindConfig implements ports.ConfigFinder. It never returns nil options:
// when nothing is found the result is empty, so engine defaults apply.
func (f *Finder) FindConfig(path string) (ports.Options, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	f.mu.Lock()
	defer f.mu.Unlock()

	if opts, ok := f.byDir[dir]; ok {
		return opts, nil
	}
	opts, source, err := f.lookup(dir)
	if err != nil {
		return nil, err
	}
	f.byDir[dir] = opts
	f.logger.Debug("config resolved", "dir", dir, "source", source)
	return opts, nil
}

// Forget drops cached results, e.g. after a config file changes.
func (f *Finder) Forget() {
	f.mu.Lock()
	f.byDir = make(map[string]ports.Options)
	f.mu.Unlock()
}

func (f *Finder) lookup(dir string) (ports.Options, string, error) {
	for d := dir; ; {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(d, name)
			if !isFile(candidate) {
				continue
			}
			opts, err := lint.LoadOptionsFile(candidate)
			return opts, candidate, err
		}

		pkg := filepath.Join(d, packageJSON)
		if isFile(pkg) {
			opts, ok, err := fromPackageJSON(pkg)
			if err != nil || ok {
				return opts, pkg, err
			}
		}

		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}

	if env := f.getenv(envConfig); env != "" {
		opts, err := lint.LoadOptionsFile(env)
		return opts, env, err
	}

	if home, err := f.home(); err == nil && home != "" {
		candidate := filepath.Join(home, homeConfig)
		if isFile(candidate) {
			opts, err := lint.LoadOptionsFile(candidate)
			return opts, candidate, err
		}
	}

	return ports.Options{}, "defaults", nil
}

// fromPackageJSON reads the coffeelintConfig key. ok is false when the file
// has no such key.
func fromPackageJSON(path string) (ports.Options, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	var pkg map[string]json.RawMessage
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", path, err)
	}
	raw, ok := pkg[packageJSONKey]
	if !ok {
		return nil, false, nil
	}
	opts, err := lint.ParseOptions(raw, lint.FormatJSON)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s %s: %w", path, packageJSONKey, err)
	}
	return opts, true, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
