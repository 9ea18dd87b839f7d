package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/lintpipe/internal/app"
)

var watchCmd = &cobra.Command{
	Use:   "watch [patterns...]",
	Short: "Lint once, then re-lint files as they change",
	Long:  "Runs a full lint, then watches the project and re-lints changed sources.\nA change to a lint config file re-lints everything. Stop with Ctrl-C.",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	patterns := args
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := a.Lint(ctx, patterns...)
	if err != nil {
		return exitError{code: ExitFileErrors, err: err}
	}
	// Failures are printed but never end watch mode.
	_ = resultError(cmd.ErrOrStderr(), res)

	return a.Watch(ctx, patterns, func(_ string, r app.Result) {
		_ = resultError(cmd.ErrOrStderr(), r)
	})
}

