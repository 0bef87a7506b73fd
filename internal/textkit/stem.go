package textkit

import "strings"

// Stem applies one light suffix rule to a token. Tokens shorter than four
// characters pass through unchanged, and at most one rule fires:
//
//	-ies            -> -y       (studies -> study)
//	-sses/-shes/
//	-ches/-xes      -> strip 2  (classes -> class, boxes -> box)
//	vowel + -ed     -> strip,   (stopped -> stop, doubled consonant reduced)
//	vowel + -ing    -> strip    (running -> run)
//	trailing -s     -> strip    (cars -> car; -ss is kept)
func Stem(token string) string {
	if len(token) < 4 {
		return token
	}

	if strings.HasSuffix(token, "ies") {
		return token[:len(token)-3] + "y"
	}

	for _, suffix := range []string{"sses", "shes", "ches", "xes"} {
		if strings.HasSuffix(token, suffix) {
			return token[:len(token)-2]
		}
	}

	if strings.HasSuffix(token, "ed") && hasVowel(token[:len(token)-2]) {
		return reduceDoubleConsonant(token[:len(token)-2])
	}

	if strings.HasSuffix(token, "ing") && hasVowel(token[:len(token)-3]) {
		return reduceDoubleConsonant(token[:len(token)-3])
	}

	if strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") {
		return token[:len(token)-1]
	}

	return token
}

// StemTokens stems each token in place-order, preserving duplicates.
func StemTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = Stem(t)
	}
	return out
}

func hasVowel(s string) bool {
	return strings.ContainsAny(s, "aeiou")
}

func reduceDoubleConsonant(s string) string {
	n := len(s)
	if n < 2 {
		return s
	}
	last := s[n-1]
	if s[n-2] == last && !strings.ContainsRune("aeiou", rune(last)) {
		return s[:n-1]
	}
	return s
}
