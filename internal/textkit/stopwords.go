package textkit

// stopWords holds generic English function words plus common web-navigation
// terms. Stems are included where they differ so the set works on both raw
// and stemmed tokens.
var stopWords = map[string]struct{}{}

func init() {
	words := []string{
		// articles, conjunctions, prepositions
		"a", "an", "the", "and", "or", "but", "nor", "so", "yet",
		"in", "on", "at", "to", "for", "of", "with", "by", "from",
		"up", "out", "off", "over", "under", "about", "into", "through",
		"during", "before", "after", "between", "against",
		// verbs and auxiliaries
		"is", "are", "was", "were", "be", "been", "being",
		"have", "has", "had", "do", "does", "did",
		"will", "would", "should", "could", "may", "might", "can", "must",
		// pronouns and determiners
		"i", "me", "my", "we", "us", "our", "you", "your",
		"he", "him", "his", "she", "her", "it", "its",
		"they", "them", "their", "this", "that", "these", "those",
		"what", "which", "who", "whom", "when", "where", "why", "how",
		"all", "each", "every", "both", "few", "some", "any",
		"more", "most", "other", "such", "no", "not", "only",
		"own", "same", "than", "too", "very", "just", "also",
		// web navigation
		"home", "page", "click", "here", "menu", "login", "signup",
		"next", "prev", "back", "www", "com", "net", "org", "http", "https",
	}
	for _, w := range words {
		stopWords[w] = struct{}{}
		stopWords[Stem(w)] = struct{}{}
	}
}

// IsStopWord reports whether token is a generic non-content word.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
