// Package textkit provides the deterministic text primitives used across the
// research pipeline: tokenization, light suffix stemming, stop words, TF-IDF
// scoring, and phrase similarity. Everything here is pure; no logging, no
// external calls.
package textkit

import (
	"strings"
	"unicode"
)

// Tokenize splits text into lowercase runs of Unicode letters and digits.
// Empty input yields an empty slice.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var tokens []string
	var current strings.Builder

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// TokenSet tokenizes, stems, and drops stop words, returning the unique
// stemmed content tokens of text.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range Tokenize(text) {
		if IsStopWord(token) {
			continue
		}
		stemmed := Stem(token)
		if IsStopWord(stemmed) {
			continue
		}
		set[stemmed] = struct{}{}
	}
	return set
}
