// Package rulepack loads pattern rules from YAML files and compiles them into
// Aho-Corasick backed source rules. The built-in pack is embedded.
package rulepack

import "embed"

//go:embed rules/*.yaml
var FS embed.FS
