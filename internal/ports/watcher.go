package ports

// Watcher monitors a directory tree for file changes and triggers re-linting.
// The adapter (fsnotify) must filter out noise (.git, node_modules, editor
// swap files) before invoking onChange. Only one Watch call should be active
// at a time.
type Watcher interface {
	// Watch starts monitoring root recursively. onChange is called with the
	// absolute path of each changed file. The callback may be invoked from
	// any goroutine. Returns an error if the directory doesn't exist or
	// permissions are insufficient.
	Watch(root string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
