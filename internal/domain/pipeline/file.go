// Package pipeline is a small push-based file-transform pipeline.
//
// Files flow through a chain of Transforms. Each transform receives one file
// and an Emitter; it may push zero or more files downstream and report zero
// or more errors. Errors never stop the pipeline: later files are still
// processed.
package pipeline

import (
	"io"
	"path/filepath"

	"github.com/corey/lintpipe/internal/ports"
)

// File is one unit of work in a pipeline.
//
// Exactly one of Contents and Stream describes the payload: a file with both
// nil is a null file (e.g. a directory entry), a file with Stream set is a
// streamed file.
type File struct {
	Cwd      string    // working directory the file was resolved from
	Base     string    // glob base; Relative is computed against it
	Path     string    // absolute or cwd-relative path
	Contents []byte    // buffered contents
	Stream   io.Reader // streamed contents

	// Lint is set by the lint adapter and read by reporter transforms.
	Lint *Annotation
}

// IsNull reports whether the file carries no contents at all.
func (f *File) IsNull() bool {
	return f.Contents == nil && f.Stream == nil
}

// IsStream reports whether the file carries streamed (unbuffered) contents.
func (f *File) IsStream() bool {
	return f.Stream != nil
}

// Relative returns the path relative to Base, falling back to Path.
// This is the label used in diagnostics and error messages.
func (f *File) Relative() string {
	if f.Base == "" {
		return filepath.ToSlash(f.Path)
	}
	rel, err := filepath.Rel(f.Base, f.Path)
	if err != nil {
		return filepath.ToSlash(f.Path)
	}
	return filepath.ToSlash(rel)
}

// Annotation is the lint summary attached to a file by the lint adapter.
// It is created once per file and not modified afterward.
type Annotation struct {
	Success      bool          `json:"success"` // ErrorCount == 0
	ErrorCount   int           `json:"errorCount"`
	WarningCount int           `json:"warningCount"`
	Options      ports.Options `json:"opt"`
	Literate     bool          `json:"literate"`
	Results      *ports.Report `json:"results"`
}

// Clean reports whether the annotation has neither errors nor warnings.
func (a *Annotation) Clean() bool {
	return a.ErrorCount == 0 && a.WarningCount == 0
}
