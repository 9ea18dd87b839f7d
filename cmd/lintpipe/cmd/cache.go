package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/lintpipe/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the report cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many reports are cached",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached report",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// withCache forces the cache on so these commands work without --cache.
func withCache(s *config.Settings) {
	s.Reporter = config.ReporterNone
	s.Cache.Enabled = true
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, cmd.OutOrStdout(), withCache)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.Cache.Len()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d cached reports\n", n)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, cmd.OutOrStdout(), withCache)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Cache.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
	return nil
}
