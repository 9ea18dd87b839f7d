// Package ahocorasick provides multi-pattern string matching using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library for O(n + m + z) matching.
package ahocorasick

import (
	aho "github.com/petar-dambovaliev/aho-corasick"
)

// TextMatch is one pattern hit with byte offsets.
type TextMatch struct {
	PatternIndex int // index into the original patterns slice
	Start        int // byte offset start (inclusive)
	End          int // byte offset end (exclusive)
}

// TextScanner finds every occurrence of a fixed set of patterns in one pass.
// It is safe for concurrent use once built.
type TextScanner struct {
	automaton aho.AhoCorasick
	patterns  []string
}

// NewTextScanner builds a scanner. Matching is case-sensitive.
func NewTextScanner(patterns []string) *TextScanner {
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	p := make([]string, len(patterns))
	copy(p, patterns)
	return &TextScanner{
		automaton: builder.Build(p),
		patterns:  p,
	}
}

// Scan returns all matches, overlapping ones included, in offset order.
func (s *TextScanner) Scan(content []byte) []TextMatch {
	if len(s.patterns) == 0 || len(content) == 0 {
		return nil
	}
	iter := s.automaton.IterOverlappingByte(content)
	var matches []TextMatch
	for next := iter.Next(); next != nil; next = iter.Next() {
		m := *next
		matches = append(matches, TextMatch{
			PatternIndex: m.Pattern(),
			Start:        m.Start(),
			End:          m.End(),
		})
	}
	return matches
}

// PatternCount returns the number of patterns in the automaton.
func (s *TextScanner) PatternCount() int {
	return len(s.patterns)
}

// Pattern returns the pattern string at the given index.
func (s *TextScanner) Pattern(idx int) string {
	if idx < 0 || idx >= len(s.patterns) {
		return ""
	}
	return s.patterns[idx]
}
