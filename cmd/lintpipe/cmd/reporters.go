package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/lintpipe/internal/adapters/reporters"
)

var reportersCmd = &cobra.Command{
	Use:   "reporters",
	Short: "List built-in reporters",
	RunE:  runReporters,
}

func runReporters(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, name := range reporters.Names() {
		fmt.Fprintln(out, name)
	}
	fmt.Fprintf(out, "\nAny other name runs %s<name> from PATH, or an executable path.\n", reporters.ExecPrefix)
	return nil
}
