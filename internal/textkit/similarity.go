package textkit

import "strings"

// Similarity scores how close two short phrases are, in [0,1]. The base is
// Jaccard overlap of stemmed token sets; containment of one phrase in the
// other adds 0.3; matching last tokens (both phrases multi-word) add 0.2,
// otherwise matching first tokens add 0.15. The result is capped at 1.
//
// Similarity(x, x) == 1 and Similarity(a, b) == Similarity(b, a).
func Similarity(a, b string) float64 {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))
	if na == nb {
		return 1
	}

	score := jaccard(stemmedSet(na), stemmedSet(nb))

	if na != "" && nb != "" && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		score += 0.3
	}

	wa := strings.Fields(na)
	wb := strings.Fields(nb)
	switch {
	case len(wa) > 1 && len(wb) > 1 && wa[len(wa)-1] == wb[len(wb)-1]:
		score += 0.2
	case len(wa) > 0 && len(wb) > 0 && wa[0] == wb[0]:
		score += 0.15
	}

	if score > 1 {
		return 1
	}
	return score
}

func stemmedSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range Tokenize(text) {
		set[Stem(token)] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Jaccard exposes set overlap for relevance scoring.
func Jaccard(a, b map[string]struct{}) float64 {
	return jaccard(a, b)
}
