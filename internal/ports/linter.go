// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// Linter is the lint engine the pipeline adapter delegates to.
// The built-in implementation lives in internal/adapters/coffeelint.
type Linter interface {
	// Lint checks one file. path is the label used in the report (usually
	// the file's relative path), source is the raw file contents. opts is
	// the effective options bag; literate selects literate-source handling.
	//
	// An error means the engine itself failed (e.g. malformed options), not
	// that the file has violations.
	Lint(path string, source []byte, opts Options, literate bool) (*Report, error)
}

// ConfigFinder discovers the options that apply to a file when none were
// given at construction time.
type ConfigFinder interface {
	// FindConfig returns the effective options for the file at path.
	// Returns empty (non-nil) options when no config file applies.
	// Must be deterministic for the same path and filesystem state.
	FindConfig(path string) (Options, error)
}
