package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective settings",
	Long:  "Prints the settings after defaults, settings file, LINTPIPE_* env vars, and flags are applied.",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	s, used, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	root, err := projectRoot()
	if err != nil {
		return err
	}
	body, err := s.YAML()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if used == "" {
		used = "(none)"
	}
	fmt.Fprintf(out, "# root:     %s\n", root)
	fmt.Fprintf(out, "# settings: %s\n", used)
	fmt.Fprint(out, string(body))
	return nil
}
