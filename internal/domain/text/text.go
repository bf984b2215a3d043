// Package text holds the tokenization and normalization rules shared by indexing,
// querying and preprocessing. Index-time and query-time tokenization must agree.
package text

import (
	"regexp"
	"strings"
	"unicode"
)

// Tokenize splits s into case-folded runs of Unicode letters and digits. Every other rune,
// underscore included, is a separator, so "raw_chicken" yields "raw" and "chicken".
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

// Normalize lowercases s and strips every character that is neither a word character
// (letter, digit, underscore) nor whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// SplitSentences splits s on runs of sentence-ending punctuation.
// Empty pieces are kept so callers can address sentences by position.
func SplitSentences(s string) []string {
	parts := sentenceBoundary.Split(s, -1)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
