package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/lintpipe/internal/config"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List registered rules and their default levels",
	Long:  "Lists built-in rules, the embedded pattern pack, and rules from configured rule packs.",
	RunE:  runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, cmd.OutOrStdout(), func(s *config.Settings) {
		s.Reporter = config.ReporterNone
		s.Cache.Enabled = false
	})
	if err != nil {
		return err
	}
	defer a.Close()

	list := a.Registry.Rules()
	out := cmd.OutOrStdout()
	for _, r := range list {
		m := r.Meta()
		fmt.Fprintf(out, "%-26s %-6s %s\n", m.Name, m.Level, m.Message)
	}
	fmt.Fprintf(out, "\n%d rules\n", len(list))
	return nil
}
