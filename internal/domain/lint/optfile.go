package lint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/corey/lintpipe/internal/ports"
)

// Options file formats, chosen by extension.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// FormatForPath picks a parser by file extension. Unknown extensions are
// treated as JSON, the format lint config files have always used.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// LoadOptionsFile reads and parses an options file.
func LoadOptionsFile(path string) (ports.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	opts, err := ParseOptions(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return opts, nil
}

// ParseOptions decodes an options mapping. The top level must be a mapping.
// An empty YAML or TOML document yields empty (non-nil) options.
func ParseOptions(data []byte, format string) (ports.Options, error) {
	var m map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown options format %q", format)
	}
	if m == nil {
		m = make(map[string]any)
	}
	return ports.Options(m), nil
}
