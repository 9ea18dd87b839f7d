package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/lintpipe/internal/adapters/coffeelint"
	fsw "github.com/corey/lintpipe/internal/adapters/fsnotify"
	"github.com/corey/lintpipe/internal/domain/lint"
	"github.com/corey/lintpipe/internal/domain/pipeline"
	"github.com/corey/lintpipe/internal/ports"
)

// sourceSuffixes are the file names watch mode re-lints.
var sourceSuffixes = append([]string{".coffee"}, lint.LiterateSuffixes...)

// WatchFunc receives the result of each re-lint. changed is the file that
// triggered it, or "" when a config change re-linted everything.
type WatchFunc func(changed string, r Result)

// Watch re-lints matching files as they change until ctx is done. A change
// to a lint config file drops the finder's memo and re-lints every match; a
// change to the options file rebuilds the pipeline first.
// Changes are processed one at a time.
func (a *App) Watch(ctx context.Context, patterns []string, onResult WatchFunc) error {
	fw, err := fsw.NewWatcher(a.watchable, a.logger)
	if err != nil {
		return err
	}
	var w ports.Watcher = fw
	defer w.Stop()

	changes := make(chan string, 64)
	err = w.Watch(a.ProjectRoot, func(path string) {
		select {
		case changes <- path:
		default:
			a.logger.Warn("watch queue full, dropping change", "path", path)
		}
	})
	if err != nil {
		return err
	}
	a.logger.Info("watching", "root", a.ProjectRoot)

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-changes:
			a.onFileChanged(ctx, patterns, path, onResult)
		}
	}
}

// onFileChanged handles a create/modify/delete event from the watcher.
func (a *App) onFileChanged(ctx context.Context, patterns []string, absPath string, onResult WatchFunc) {
	if a.isOptionsFile(absPath) {
		if err := a.Reload(); err != nil {
			a.logger.Error("options reload failed, keeping previous options", "path", absPath, "err", err)
			return
		}
		a.logger.Info("options changed, re-linting", "path", absPath)
		r, err := a.Lint(ctx, patterns...)
		if err != nil {
			a.logger.Error("re-lint failed", "err", err)
			return
		}
		onResult("", r)
		return
	}

	if a.isConfigFile(absPath) {
		a.logger.Info("config changed, re-linting", "path", absPath)
		a.Finder.Forget()
		r, err := a.Lint(ctx, patterns...)
		if err != nil {
			a.logger.Error("re-lint failed", "err", err)
			return
		}
		onResult("", r)
		return
	}

	if _, err := os.Stat(absPath); err != nil {
		a.logger.Debug("file removed", "path", absPath)
		return
	}

	files, err := a.Source.Files(patterns...)
	if err != nil {
		a.logger.Error("glob failed", "err", err)
		return
	}
	for _, f := range files {
		if filepath.Clean(f.Path) == filepath.Clean(absPath) {
			onResult(absPath, a.Process(ctx, []*pipeline.File{f}))
			return
		}
	}
	a.logger.Debug("change outside patterns", "path", absPath)
}

// watchable filters watcher events down to sources, discovered config files
// and the options file.
func (a *App) watchable(path string) bool {
	return isSource(path) || a.isConfigFile(path) || a.isOptionsFile(path)
}

// isConfigFile reports whether path is a file config discovery reads.
func (a *App) isConfigFile(path string) bool {
	base := filepath.Base(path)
	if base == "package.json" {
		return true
	}
	for _, name := range coffeelint.ConfigFileNames {
		if base == name {
			return true
		}
	}
	return false
}

// isOptionsFile reports whether path is the configured options file, which
// is read when the pipeline is built rather than per file.
func (a *App) isOptionsFile(path string) bool {
	opts := resolve(a.ProjectRoot, a.Settings.Options)
	return opts != "" && filepath.Clean(path) == filepath.Clean(opts)
}

func isSource(path string) bool {
	for _, suffix := range sourceSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}
