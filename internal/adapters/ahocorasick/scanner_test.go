package ahocorasick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Aho-Corasick text scanner: one pass, every pattern, byte offsets
// Expectation: all occurrences of all patterns are reported with offsets
// that slice back to the pattern text.
// =============================================================================

func TestScan_MultiplePatterns(t *testing.T) {
	s := NewTextScanner([]string{"debugger", "`"})
	content := []byte("x = `js`\ndebugger\n")

	matches := s.Scan(content)
	require.Len(t, matches, 3)
	for _, m := range matches {
		assert.Equal(t, s.Pattern(m.PatternIndex), string(content[m.Start:m.End]))
	}
	assert.Equal(t, 9, matches[2].Start)
}

func TestScan_Overlapping(t *testing.T) {
	s := NewTextScanner([]string{"+", "++"})
	matches := s.Scan([]byte("i++"))

	var found []string
	for _, m := range matches {
		found = append(found, s.Pattern(m.PatternIndex))
	}
	assert.ElementsMatch(t, []string{"+", "+", "++"}, found)
}

func TestScan_CaseSensitive(t *testing.T) {
	s := NewTextScanner([]string{"debugger"})
	assert.Empty(t, s.Scan([]byte("Debugger")))
}

func TestScan_EmptyInputs(t *testing.T) {
	assert.Empty(t, NewTextScanner(nil).Scan([]byte("anything")))
	assert.Empty(t, NewTextScanner([]string{"x"}).Scan(nil))
}

func TestPattern_OutOfRange(t *testing.T) {
	s := NewTextScanner([]string{"a"})
	assert.Equal(t, 1, s.PatternCount())
	assert.Equal(t, "", s.Pattern(-1))
	assert.Equal(t, "", s.Pattern(1))
}
