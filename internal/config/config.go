// Package config loads lintpipe's CLI settings.
//
// Precedence, lowest first: built-in defaults, the settings file
// (.lintpipe.yaml in the working directory, or an explicit path), LINTPIPE_*
// environment variables, then command-line flags that were actually set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the settings file looked up in the working directory,
	// without extension. Any extension viper reads is accepted.
	FileName = ".lintpipe"

	// EnvPrefix prefixes every environment override, e.g. LINTPIPE_REPORTER
	// or LINTPIPE_CACHE_ENABLED.
	EnvPrefix = "LINTPIPE"
)

// Fail policies.
const (
	FailNone    = "none"
	FailError   = "error"
	FailWarning = "warning"
)

// ReporterNone disables output reporting; a fail policy may still apply.
const ReporterNone = "none"

// Literate modes.
const (
	LiterateAuto  = "auto"
	LiterateTrue  = "true"
	LiterateFalse = "false"
)

// ErrInvalidSettings wraps every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the effective CLI configuration.
type Settings struct {
	Reporter  string        `mapstructure:"reporter" yaml:"reporter"`
	Fail      string        `mapstructure:"fail" yaml:"fail" validate:"oneof=none error warning"`
	Literate  string        `mapstructure:"literate" yaml:"literate" validate:"oneof=auto true false"`
	Options   string        `mapstructure:"options" yaml:"options"`
	RulePacks []string      `mapstructure:"rule_packs" yaml:"rule_packs" validate:"dive,required"`
	Cache     CacheSettings `mapstructure:"cache" yaml:"cache"`
	LogLevel  string        `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
}

// CacheSettings configures the persistent report cache.
type CacheSettings struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Path    string        `mapstructure:"path" yaml:"path" validate:"required_if=Enabled true"`
	MaxAge  time.Duration `mapstructure:"max_age" yaml:"max_age" validate:"gte=0"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Reporter: "stylish",
		Fail:     FailNone,
		Literate: LiterateAuto,
		Cache: CacheSettings{
			Path:   filepath.Join(".lintpipe", "cache.db"),
			MaxAge: 7 * 24 * time.Hour,
		},
		LogLevel: "warn",
	}
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// File is an explicit settings file. It must exist.
	File string
	// Dir is searched for FileName when File is empty. Defaults to the
	// working directory.
	Dir string
	// Flags maps setting keys to flags. Only flags the user changed
	// override lower layers.
	Flags map[string]*pflag.Flag
}

// Load resolves and validates settings. It returns the settings file used,
// or "" when none was found.
func Load(opts LoadOptions) (*Settings, string, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("reporter", d.Reporter)
	v.SetDefault("fail", d.Fail)
	v.SetDefault("literate", d.Literate)
	v.SetDefault("options", d.Options)
	v.SetDefault("rule_packs", []string{})
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.max_age", d.Cache.MaxAge)
	v.SetDefault("log_level", d.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return nil, "", fmt.Errorf("settings file: %w", err)
		}
		v.SetConfigFile(opts.File)
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
	}

	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("read settings: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	for key, flag := range opts.Flags {
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, "", fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}

	var s Settings
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		boolToStringHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&s, hook); err != nil {
		return nil, "", fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, "", err
	}
	return &s, used, nil
}

// boolToStringHook keeps `literate: true` in YAML from decoding as "1".
func boolToStringHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.Bool && to.Kind() == reflect.String {
		return strconv.FormatBool(data.(bool)), nil
	}
	return data, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// LiterateOverride returns nil for "auto", or the forced literate flag.
func (s *Settings) LiterateOverride() *bool {
	switch s.Literate {
	case LiterateTrue:
		b := true
		return &b
	case LiterateFalse:
		b := false
		return &b
	default:
		return nil
	}
}

// Reporters returns the reporter selectors to chain, in order: the output
// reporter first, then the fail policy if any. An empty reporter name
// selects the dispatcher's default.
func (s *Settings) Reporters() []string {
	var out []string
	if s.Reporter != ReporterNone {
		out = append(out, s.Reporter)
	}
	switch s.Fail {
	case FailError:
		out = append(out, "fail")
	case FailWarning:
		out = append(out, "failOnWarning")
	}
	return out
}

// YAML renders the settings as a settings file.
func (s *Settings) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
