package song

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

const (
	fullWidthFirst  = '！'
	fullWidthLast   = '～'
	fullWidthOffset = 0xFEE0
)

// Normalizer folds the spelling differences seen between the two sources:
// spacing before parentheticals, full-width punctuation, smart quotes,
// macron variants and the ellipsis character.
//
// A Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	table map[rune]string
}

// NewNormalizer returns a Normalizer with the fixed fold table.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		table: map[rune]string{
			'！': "!",
			'（': "(",
			'）': ")",
			'“': `"`,
			'”': `"`,
			'’': "'",
			'ã': "a",
			'ā': "a",
			'＋': "+",
			'…': "...",
		},
	}
}

// Normalize removes whitespace and applies the fold table. Case is preserved.
func (n *Normalizer) Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if rep, ok := n.table[r]; ok {
			b.WriteString(rep)
			continue
		}
		if r >= fullWidthFirst && r <= fullWidthLast {
			r -= fullWidthOffset
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MatchKey is the join key for title matching: Normalize followed by Unicode
// case folding.
func (n *Normalizer) MatchKey(s string) string {
	// cases.Caser is stateful, so one is created per call.
	return cases.Fold().String(n.Normalize(s))
}
