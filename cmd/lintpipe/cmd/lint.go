package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/corey/lintpipe/internal/app"
)

// defaultPatterns are linted when no patterns are given.
var defaultPatterns = []string{
	"**/*.coffee",
	"**/*.litcoffee",
	"**/*.coffee.md",
	"!**/node_modules/**",
}

var lintCmd = &cobra.Command{
	Use:   "lint [patterns...]",
	Short: "Lint files matching glob patterns",
	Long: "Lints every file matching the patterns (doublestar globs, \"!\" excludes).\n" +
		"Exit codes: 0 clean, 1 fail policy triggered, 2 file errors, 65 configuration error.",
	RunE: runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	patterns := args
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}
	res, err := a.Lint(cmd.Context(), patterns...)
	if err != nil {
		return exitError{code: ExitFileErrors, err: err}
	}
	return resultError(cmd.ErrOrStderr(), res)
}

// resultError prints per-file errors and maps the result to an exit code.
// File errors outrank fail-policy rejections.
func resultError(w io.Writer, res app.Result) error {
	for _, err := range res.Errors {
		fmt.Fprintln(w, err)
	}
	switch {
	case len(res.FileErrors()) > 0:
		return exitError{code: ExitFileErrors}
	case res.LintFailed():
		return exitError{code: ExitLintFailed}
	default:
		return nil
	}
}
