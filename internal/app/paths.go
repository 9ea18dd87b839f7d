package app

import (
	"os"
	"path/filepath"
)

// Paths holds the resolved locations under the project's .lintpipe/ directory.
type Paths struct {
	Root  string // .lintpipe/
	Cache string // .lintpipe/cache.db
}

// NewPaths resolves paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".lintpipe")
	return &Paths{
		Root:  root,
		Cache: filepath.Join(root, "cache.db"),
	}
}

// EnsureDirs creates .lintpipe/. Idempotent.
func (p *Paths) EnsureDirs() error {
	return os.MkdirAll(p.Root, 0755)
}

// resolve makes path absolute against root. Empty stays empty.
func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
