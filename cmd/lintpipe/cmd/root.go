package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/corey/lintpipe/internal/app"
	"github.com/corey/lintpipe/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "lintpipe",
	Short:         "CoffeeScript lint pipeline",
	Long:          "Lints CoffeeScript sources with configurable options, reporters, and fail policies.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	settingsFile string
	verbose      bool
)

// settingFlags maps settings keys to the persistent flags that override them.
var settingFlags = map[string]string{
	"reporter":      "reporter",
	"fail":          "fail",
	"literate":      "literate",
	"options":       "options",
	"rule_packs":    "rule-pack",
	"cache.enabled": "cache",
	"cache.path":    "cache-path",
	"log_level":     "log-level",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&settingsFile, "config", "", "settings file (default: ./"+config.FileName+".yaml)")
	pf.StringP("reporter", "r", "stylish", `reporter name, external reporter, or "none"`)
	pf.String("fail", config.FailNone, "fail policy: none, error, or warning")
	pf.String("literate", config.LiterateAuto, "literate handling: auto, true, or false")
	pf.StringP("options", "o", "", "lint options file (disables per-file config discovery)")
	pf.StringSlice("rule-pack", nil, "extra YAML rule pack file or directory (repeatable)")
	pf.Bool("cache", false, "cache reports across runs")
	pf.String("cache-path", "", "report cache location")
	pf.String("log-level", "warn", "log level: debug, info, warn, or error")
	pf.BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level debug")

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(reportersCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
}

// projectRoot returns the project root (cwd by default).
func projectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}
	return dir, nil
}

// loadSettings layers defaults, the settings file, LINTPIPE_* env vars and
// the flags the user actually set. It also returns the settings file used.
func loadSettings(cmd *cobra.Command) (*config.Settings, string, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, "", err
	}
	flags := make(map[string]*pflag.Flag, len(settingFlags))
	for key, name := range settingFlags {
		flags[key] = cmd.Flags().Lookup(name)
	}
	s, used, err := config.Load(config.LoadOptions{File: settingsFile, Dir: root, Flags: flags})
	if err != nil {
		return nil, "", configError(err)
	}
	return s, used, nil
}

// newLogger builds the process logger on stderr.
func newLogger(s *config.Settings) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "lintpipe"})
	level, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

// newApp loads settings and wires an App writing reports to out.
func newApp(cmd *cobra.Command, out io.Writer, mut func(*config.Settings)) (*app.App, error) {
	s, used, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	if mut != nil {
		mut(s)
	}
	logger := newLogger(s)
	if used != "" {
		logger.Debug("settings loaded", "file", used)
	}
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	a, err := app.New(app.Config{
		ProjectRoot: root,
		Settings:    *s,
		Output:      out,
		Logger:      logger,
	})
	if err != nil {
		return nil, configError(err)
	}
	return a, nil
}
