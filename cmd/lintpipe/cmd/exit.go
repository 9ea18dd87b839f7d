package cmd

import (
	"errors"

	"github.com/corey/lintpipe/internal/config"
	"github.com/corey/lintpipe/internal/domain/pipeline"
)

// Exit codes. 65 is EX_DATAERR from sysexits.h.
const (
	ExitOK         = 0
	ExitLintFailed = 1
	ExitFileErrors = 2
	ExitConfig     = 65
)

// exitError is returned by commands to signal a specific exit code.
// An empty message means the command already reported the problem.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e exitError) Unwrap() error { return e.err }

// ExitCode maps an error returned by Execute to a process exit code.
// Configuration problems get ExitConfig wherever they surface; anything
// else unrecognized is treated like a per-file error.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, pipeline.ErrConfiguration) || errors.Is(err, config.ErrInvalidSettings) {
		return ExitConfig
	}
	return ExitFileErrors
}

// configError marks err as a configuration problem.
func configError(err error) error {
	if err == nil {
		return nil
	}
	return exitError{code: ExitConfig, err: err}
}
