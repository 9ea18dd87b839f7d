package lint

import (
	"fmt"
	"reflect"

	"github.com/charmbracelet/log"

	"github.com/corey/lintpipe/internal/domain/pipeline"
	"github.com/corey/lintpipe/internal/ports"
)

// OptionsArg fills the options slot of a Config. It is either an inline
// options mapping (Inline) or a list of custom rules (RuleList). A rule list
// in the options slot means "no inline options, these custom rules".
type OptionsArg interface {
	optionsArg()
}

type inlineOptions struct {
	opts ports.Options
}

type ruleList struct {
	entries []any
}

func (inlineOptions) optionsArg() {}
func (ruleList) optionsArg()      {}

// Inline supplies an options mapping. Inline(nil) leaves options unset.
func Inline(opts ports.Options) OptionsArg {
	return inlineOptions{opts: opts}
}

// RuleList supplies custom rules through the options slot. Entries are
// validated by Resolve; anything but a rule constructor is rejected.
func RuleList(entries ...any) OptionsArg {
	return ruleList{entries: entries}
}

// Config is the construction-time configuration of the lint adapter.
//
// Precedence: OptionsPath beats an Inline mapping. With neither, options are
// discovered per file through Finder. A nil Literate means "derive from the
// file name".
type Config struct {
	OptionsPath string
	Options     OptionsArg
	Literate    *bool

	// Rules are custom rule constructors: ports.RuleConstructor or
	// func() ports.Rule values. Other entries fail construction.
	Rules []any

	Registry ports.RuleRegistry
	Engine   ports.Linter
	Finder   ports.ConfigFinder
	Logger   *log.Logger
}

// Resolved is the normalized outcome of Resolve.
type Resolved struct {
	Options  ports.Options // nil: discover per file
	Literate *bool         // nil: derive per file
	Rules    []ports.RuleConstructor
}

// Resolve validates cfg, loads the options file and then registers its
// custom rules with cfg.Registry. Registration happens last and all at once,
// so a failed Resolve leaves the registry untouched. All failures are
// configuration errors.
func Resolve(cfg Config) (Resolved, error) {
	var res Resolved
	entries := cfg.Rules

	switch o := cfg.Options.(type) {
	case nil:
	case inlineOptions:
		res.Options = o.opts
	case ruleList:
		combined := make([]any, 0, len(o.entries)+len(entries))
		combined = append(combined, o.entries...)
		entries = append(combined, entries...)
	}

	ctors := make([]ports.RuleConstructor, 0, len(entries))
	for _, entry := range entries {
		ctor, err := toConstructor(entry)
		if err != nil {
			return Resolved{}, err
		}
		ctors = append(ctors, ctor)
	}

	if len(ctors) > 0 && cfg.Registry == nil {
		return Resolved{}, pipeline.NewPluginError(pipeline.ErrConfiguration,
			"custom rules given but no rule registry configured")
	}

	if cfg.OptionsPath != "" {
		opts, err := LoadOptionsFile(cfg.OptionsPath)
		if err != nil {
			return Resolved{}, pipeline.WrapPluginError(pipeline.ErrConfiguration, err,
				"could not load config from file")
		}
		res.Options = opts
	}

	if len(ctors) > 0 {
		if err := cfg.Registry.RegisterAll(ctors...); err != nil {
			return Resolved{}, pipeline.WrapPluginError(pipeline.ErrConfiguration, err,
				"could not register custom rule")
		}
	}
	res.Rules = ctors

	if cfg.Literate != nil {
		v := *cfg.Literate
		res.Literate = &v
	}
	return res, nil
}

// toConstructor accepts only callable rule constructors.
func toConstructor(entry any) (ports.RuleConstructor, error) {
	switch fn := entry.(type) {
	case ports.RuleConstructor:
		if fn != nil {
			return fn, nil
		}
	case func() ports.Rule:
		if fn != nil {
			return ports.RuleConstructor(fn), nil
		}
	}
	return nil, pipeline.NewPluginError(pipeline.ErrConfiguration,
		"custom rules need to be of type function, not %s", typeName(entry))
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Func && reflect.ValueOf(v).IsNil() {
		return "nil " + t.String()
	}
	return t.String()
}

// ParseArgs builds a Config from loosely typed arguments in any order:
//
//	string                    options file path
//	ports.Options, map        inline options
//	bool                      literate flag
//	OptionsArg                options slot, as is
//	any slice                 custom rules
//	nil                       skipped
//
// With no options mapping, the first slice fills the options slot and is
// read as a rule list with no inline options; otherwise it is the rule list
// proper. Either way the same rules get registered. Supplying the same kind
// twice (or more than two slices) is a configuration error.
func ParseArgs(args ...any) (Config, error) {
	var (
		cfg               Config
		havePath, haveLit bool
		slices            [][]any
	)

	dup := func(kind string) error {
		return pipeline.NewPluginError(pipeline.ErrConfiguration, "%s given more than once", kind)
	}
	setOpts := func(o OptionsArg) error {
		if cfg.Options != nil {
			return dup("options")
		}
		cfg.Options = o
		return nil
	}

	for _, arg := range args {
		var err error
		switch v := arg.(type) {
		case nil:
			continue
		case string:
			if havePath {
				return Config{}, dup("options file path")
			}
			cfg.OptionsPath, havePath = v, true
		case ports.Options:
			err = setOpts(Inline(v))
		case map[string]any:
			err = setOpts(Inline(ports.Options(v)))
		case OptionsArg:
			err = setOpts(v)
		case bool:
			if haveLit {
				return Config{}, dup("literate flag")
			}
			lit := v
			cfg.Literate, haveLit = &lit, true
		default:
			entries, ok := sliceEntries(arg)
			if !ok {
				return Config{}, pipeline.NewPluginError(pipeline.ErrConfiguration,
					"unsupported argument of type %s", typeName(arg))
			}
			slices = append(slices, entries)
		}
		if err != nil {
			return Config{}, err
		}
	}

	for _, entries := range slices {
		switch {
		case cfg.Options == nil:
			cfg.Options = RuleList(entries...)
		case cfg.Rules == nil:
			cfg.Rules = entries
		default:
			return Config{}, dup("rule list")
		}
	}
	return cfg, nil
}

// sliceEntries flattens any slice or array into []any.
func sliceEntries(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// String describes the resolved configuration for debug logs.
func (r Resolved) String() string {
	opts := "discover"
	if r.Options != nil {
		opts = fmt.Sprintf("%d rule entries", len(r.Options))
	}
	lit := "derive"
	if r.Literate != nil {
		lit = fmt.Sprint(*r.Literate)
	}
	return fmt.Sprintf("options=%s literate=%s custom_rules=%d", opts, lit, len(r.Rules))
}
