// Package fsglob is the source stage of a lint pipeline. It expands
// doublestar glob patterns into pipeline files, the way a build tool's
// "src" step does: every match carries the working directory, the glob base
// its relative path is computed against, and either buffered contents, a
// lazily opened stream, or nothing at all for directories.
package fsglob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/corey/lintpipe/internal/domain/pipeline"
)

// Source resolves glob patterns into files.
type Source struct {
	cwd       string
	stream    bool
	filesOnly bool
	logger    *log.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithStreaming makes matched files carry a Stream instead of Contents.
func WithStreaming() Option {
	return func(s *Source) { s.stream = true }
}

// WithFilesOnly drops directory matches instead of emitting null files.
func WithFilesOnly() Option {
	return func(s *Source) { s.filesOnly = true }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Source resolving relative patterns against cwd.
// An empty cwd means the process working directory.
func New(cwd string, opts ...Option) (*Source, error) {
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cwd = wd
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return nil, err
	}
	s := &Source{cwd: abs, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Cwd returns the absolute working directory.
func (s *Source) Cwd() string {
	return s.cwd
}

// Files expands patterns in order. A pattern starting with "!" excludes
// matching paths from every positive pattern. A literal (non-glob) pattern
// that matches nothing is an error; a glob matching nothing is not. Each
// path is returned at most once, with the base of the first pattern that
// matched it.
func (s *Source) Files(patterns ...string) ([]*pipeline.File, error) {
	var include, exclude []string
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if neg, ok := strings.CutPrefix(p, "!"); ok {
			exclude = append(exclude, s.absPattern(neg))
			continue
		}
		include = append(include, s.absPattern(p))
	}
	for _, pat := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid glob %q: %w", pat, doublestar.ErrBadPattern)
		}
	}

	seen := make(map[string]bool)
	var files []*pipeline.File
	for _, pat := range include {
		base, rel := doublestar.SplitPattern(pat)
		matches, err := doublestar.Glob(os.DirFS(base), rel)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pat, err)
		}
		if len(matches) == 0 && !hasMeta(rel) {
			return nil, fmt.Errorf("file not found with singular glob: %s", filepath.FromSlash(pat))
		}
		sort.Strings(matches)

		for _, m := range matches {
			slashPath := joinSlash(base, m)
			if seen[slashPath] || excluded(exclude, slashPath) {
				continue
			}
			seen[slashPath] = true

			f, err := s.load(filepath.FromSlash(base), filepath.FromSlash(slashPath))
			if err != nil {
				return nil, err
			}
			if f == nil {
				continue
			}
			files = append(files, f)
		}
	}
	s.logger.Debug("globbed", "patterns", len(patterns), "files", len(files))
	return files, nil
}

// Feed sends files on a channel until they run out or ctx is cancelled.
// The channel is closed afterward.
func Feed(ctx context.Context, files []*pipeline.File) <-chan *pipeline.File {
	ch := make(chan *pipeline.File)
	go func() {
		defer close(ch)
		for _, f := range files {
			select {
			case ch <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func (s *Source) load(base, path string) (*pipeline.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	f := &pipeline.File{Cwd: s.cwd, Base: base, Path: path}
	switch {
	case info.IsDir():
		if s.filesOnly {
			return nil, nil
		}
		return f, nil
	case s.stream:
		f.Stream = &lazyReader{path: path}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if data == nil {
			data = []byte{}
		}
		f.Contents = data
	}
	return f, nil
}

func (s *Source) absPattern(p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.cwd, p)
	}
	return filepath.ToSlash(filepath.Clean(p))
}

func excluded(patterns []string, path string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, path); err == nil && ok {
			return true
		}
	}
	return false
}

func joinSlash(base, rel string) string {
	if base == "/" {
		return "/" + rel
	}
	return base + "/" + rel
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, `*?[{\`)
}

// lazyReader opens its file on first Read and closes it at EOF, so a
// Source can hand out streams for many files without holding descriptors.
type lazyReader struct {
	path string
	f    *os.File
	done bool
}

func (r *lazyReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	if r.f == nil {
		f, err := os.Open(r.path)
		if err != nil {
			r.done = true
			return 0, err
		}
		r.f = f
	}
	n, err := r.f.Read(p)
	if err != nil {
		r.f.Close()
		r.done = true
	}
	if err != nil && err != io.EOF {
		return n, err
	}
	if err == io.EOF && n > 0 {
		return n, nil
	}
	return n, err
}
