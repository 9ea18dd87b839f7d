// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It recursively watches a source tree, skips vendored and generated
// directories, keeps only paths accepted by a match function, and debounces
// rapid events (editors often trigger multiple writes per save).
package fsnotify

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Directories to ignore when watching.
var ignoreDirs = map[string]bool{
	".git":             true,
	".hg":              true,
	"node_modules":     true,
	"bower_components": true,
	".idea":            true,
	".vscode":          true,
	"dist":             true,
	"build":            true,
	"coverage":         true,
	".lintpipe":        true,
}

// Editor and OS droppings that never trigger a re-lint.
var ignoreSuffixes = []string{".DS_Store", ".swp", ".swx", "~", ".tmp"}

const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	match   func(path string) bool
	logger  *log.Logger
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a watcher. match decides which file paths are reported;
// nil reports everything that is not ignored.
func NewWatcher(match func(path string) bool, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if match == nil {
		match = func(string) bool { return true }
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Watcher{
		fw:     fw,
		match:  match,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// Watch starts monitoring root recursively.
// onChange is called with the absolute path of each changed file.
func (w *Watcher) Watch(root string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absPath); err != nil {
		return err
	}

	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if d.IsDir() {
			if shouldIgnoreDir(d.Name()) && path != absPath {
				return filepath.SkipDir
			}
			return w.fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	debounce := make(map[string]time.Time)

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name

				// New directories join the watch list.
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(path); err == nil && info.IsDir() {
						if !shouldIgnoreDir(info.Name()) {
							if err := w.fw.Add(path); err != nil {
								w.logger.Warn("watch directory", "path", path, "err", err)
							}
						}
						continue
					}
				}

				if shouldIgnorePath(absPath, path) || !w.match(path) {
					continue
				}

				now := time.Now()
				if last, seen := debounce[path]; seen && now.Sub(last) < debounceInterval {
					continue
				}
				debounce[path] = now

				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					w.logger.Debug("change", "path", path, "op", event.Op.String())
					onChange(path)
				}

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watcher error", "err", err)

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

// shouldIgnoreDir returns true if the directory name should be skipped.
func shouldIgnoreDir(name string) bool {
	return ignoreDirs[name]
}

// shouldIgnorePath returns true if the file path should not trigger onChange.
// Only components below root are checked against ignoreDirs.
func shouldIgnorePath(root, path string) bool {
	base := filepath.Base(path)
	for _, suffix := range ignoreSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}
	return false
}
