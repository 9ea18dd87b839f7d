package reporters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/corey/lintpipe/internal/ports"
)

// ExecPrefix is prepended to bare reporter names when searching PATH.
const ExecPrefix = "lintpipe-reporter-"

// DefaultExecTimeout bounds one external reporter run.
const DefaultExecTimeout = 30 * time.Second

// External runs an executable per report. The report's paths are written to
// its stdin as JSON (the same shape as the raw reporter) and its stdout is
// copied to the output writer.
type External struct {
	path    string
	out     io.Writer
	timeout time.Duration
}

// NewExternal creates a reporter running the executable at path.
func NewExternal(path string, out io.Writer) *External {
	return &External{path: path, out: out, timeout: DefaultExecTimeout}
}

// Path returns the executable the reporter runs.
func (e *External) Path() string {
	return e.path
}

// Publish implements ports.Reporter.
func (e *External) Publish(rep *ports.Report) error {
	paths := rep.Paths
	if paths == nil {
		paths = map[string][]ports.Diagnostic{}
	}
	payload, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.path)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = e.out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("reporter %s: %w: %s", e.path, err, msg)
		}
		return fmt.Errorf("reporter %s: %w", e.path, err)
	}
	return nil
}

// Lookup resolves name to an external reporter. A name containing a path
// separator is used as a path; any other name is searched on PATH as
// ExecPrefix+name. It satisfies report.ExternalResolver.
func Lookup(name string, out io.Writer) (ports.Reporter, bool) {
	if name == "" {
		return nil, false
	}
	if strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		info, err := os.Stat(name)
		if err != nil || info.IsDir() || info.Mode().Perm()&0o111 == 0 {
			return nil, false
		}
		return NewExternal(name, out), true
	}
	path, err := exec.LookPath(ExecPrefix + name)
	if err != nil {
		return nil, false
	}
	return NewExternal(path, out), true
}
