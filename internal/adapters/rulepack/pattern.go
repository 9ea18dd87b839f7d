package rulepack

import (
	"regexp"
	"strings"

	"github.com/corey/lintpipe/internal/adapters/ahocorasick"
	"github.com/corey/lintpipe/internal/domain/rules"
	"github.com/corey/lintpipe/internal/ports"
)

// PatternRule reports lines containing any of a set of fixed strings.
// Hits can be narrowed by a regex over the line and restricted to code: with
// codeOnly, hits in ### blocks or trailing # comments are skipped and the
// regex only sees the code before the comment. At most one finding per line.
type PatternRule struct {
	meta     ports.RuleMeta
	scanner  *ahocorasick.TextScanner
	regex    *regexp.Regexp
	codeOnly bool
	digest   string
}

func (r *PatternRule) Meta() ports.RuleMeta { return r.meta }

// Fingerprint implements ports.Fingerprinter. It digests the rule's
// definition, so editing a pack without renaming a rule changes it.
func (r *PatternRule) Fingerprint() string { return r.digest }

// LintSource implements ports.SourceRule.
func (r *PatternRule) LintSource(src []byte, _ []string, _ ports.RuleConfig) []ports.Finding {
	matches := r.scanner.Scan(src)
	if len(matches) == 0 {
		return nil
	}

	lineOffsets := buildLineOffsets(src)
	inBlock := blockCommentLines(src, lineOffsets)
	seen := make(map[int]bool)
	var findings []ports.Finding

	for _, m := range matches {
		line := offsetToLine(lineOffsets, m.Start)
		if seen[line] {
			continue
		}
		text := extractLineText(src, lineOffsets, line)
		subject := text
		if r.codeOnly {
			if inBlock[line] {
				continue
			}
			code := rules.CodePart(string(text))
			if m.Start-lineOffsets[line-1] >= len(code) {
				continue
			}
			subject = []byte(code)
		}
		if r.regex != nil && !r.regex.Match(subject) {
			continue
		}
		seen[line] = true
		findings = append(findings, ports.Finding{
			Line:    line,
			Context: strings.TrimSpace(string(text)),
		})
	}
	return findings
}

// extractLineText extracts the raw bytes for a given 1-indexed line.
func extractLineText(source []byte, lineOffsets []int, line int) []byte {
	if line < 1 || line > len(lineOffsets) {
		return nil
	}
	start := lineOffsets[line-1]
	end := len(source)
	if line < len(lineOffsets) {
		end = lineOffsets[line]
	}
	return source[start:end]
}

// buildLineOffsets returns a slice where lineOffsets[i] is the byte offset
// of the start of line i+1 (1-indexed lines). lineOffsets[0] = 0 (line 1 starts at byte 0).
func buildLineOffsets(source []byte) []int {
	offsets := []int{0}
	for i, b := range source {
		if b == '\n' && i+1 < len(source) {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// offsetToLine converts a byte offset to a 1-indexed line number.
func offsetToLine(offsets []int, byteOffset int) int {
	lo, hi := 0, len(offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if offsets[mid] <= byteOffset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// blockCommentLines marks lines inside ### ... ### blocks, delimiters included.
func blockCommentLines(source []byte, lineOffsets []int) map[int]bool {
	out := make(map[int]bool)
	open := false
	for line := 1; line <= len(lineOffsets); line++ {
		text := strings.TrimSpace(string(extractLineText(source, lineOffsets, line)))
		delim := strings.HasPrefix(text, "###") && !strings.HasPrefix(text, "####")
		if delim {
			out[line] = true
			if !(len(text) > 6 && strings.HasSuffix(text, "###")) {
				open = !open
			}
			continue
		}
		if open {
			out[line] = true
		}
	}
	return out
}
