package seeds

import (
	"math"
	"sort"
	"strings"

	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/textkit"
)

const (
	// fallbackPageLimit bounds the deterministic path to the first pages of
	// the crawl, where the site states what it is about.
	fallbackPageLimit = 5
	// headingsPerLevel caps each page's heading contribution.
	headingsPerLevel = 10
	// minTokenLen is the shortest single-token candidate considered.
	minTokenLen = 3
	// minFrequency is how often a candidate must occur across pages.
	minFrequency = 2
	// fallbackLimit is the most candidates the fallback returns.
	fallbackLimit = 150
)

// genericNavWords are navigation labels that carry no topical meaning.
var genericNavWords = map[string]struct{}{
	"click": {}, "page": {}, "here": {}, "more": {},
	"learn": {}, "read": {}, "view": {}, "see": {},
}

// fallbackSeeds extracts candidate keyword phrases from page titles, meta
// descriptions, and headings. Candidates are single content tokens and
// 2-3 word phrases, scored by frequency, TF-IDF, and phrase length.
func fallbackSeeds(pages []models.PageContent, max int) []string {
	if len(pages) > fallbackPageLimit {
		pages = pages[:fallbackPageLimit]
	}

	docs := make([][]string, len(pages))
	for i, page := range pages {
		docs[i] = textkit.Tokenize(pageSurface(&page))
	}
	model := textkit.NewTfIdf(docs)

	freq := make(map[string]int)
	for _, doc := range docs {
		for i, token := range doc {
			if isContentToken(token) {
				freq[token]++
			}
			for n := 2; n <= 3; n++ {
				if i+n > len(doc) {
					break
				}
				window := doc[i : i+n]
				if phraseContentRatio(window) >= 0.5 {
					freq[strings.Join(window, " ")]++
				}
			}
		}
	}

	type candidate struct {
		text  string
		score float64
	}
	candidates := make([]candidate, 0, len(freq))
	for text, count := range freq {
		if count < minFrequency {
			continue
		}
		if _, generic := genericNavWords[text]; generic {
			continue
		}
		score := 0.3*math.Log(float64(count)+1)/10 +
			0.5*maxTfIdf(model, docs, text) +
			lengthBonus(text)
		candidates = append(candidates, candidate{text: text, score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].text < candidates[j].text
	})

	limit := fallbackLimit
	if max > 0 && max < limit {
		limit = max
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.text
	}
	return out
}

// pageSurface concatenates the fields that describe what a page is about:
// title, meta description, and up to headingsPerLevel headings per level.
func pageSurface(page *models.PageContent) string {
	var parts []string
	if page.Title != "" {
		parts = append(parts, page.Title)
	}
	if page.MetaDescription != "" {
		parts = append(parts, page.MetaDescription)
	}
	for _, level := range [][]string{page.H1, page.H2, page.H3} {
		if len(level) > headingsPerLevel {
			level = level[:headingsPerLevel]
		}
		parts = append(parts, level...)
	}
	return strings.Join(parts, " ")
}

// isContentToken is a lightweight part-of-speech stand-in: it keeps tokens
// that could be nouns, verbs, or adjectives and rejects function words,
// adverbs, and numbers.
func isContentToken(token string) bool {
	if len(token) < minTokenLen {
		return false
	}
	if textkit.IsStopWord(token) {
		return false
	}
	if strings.HasSuffix(token, "ly") {
		return false
	}
	hasLetter := false
	for _, r := range token {
		if r >= 'a' && r <= 'z' || r > 127 {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}
	return strings.ContainsAny(token, "aeiouyäöüéèáà")
}

// phraseContentRatio returns the fraction of tokens that are content words.
func phraseContentRatio(window []string) float64 {
	content := 0
	for _, token := range window {
		if isContentToken(token) {
			content++
		}
	}
	return float64(content) / float64(len(window))
}

// maxTfIdf returns the candidate's highest TF-IDF weight across all pages.
// Phrase candidates use the mean of their member tokens within each page.
func maxTfIdf(model *textkit.TfIdf, docs [][]string, text string) float64 {
	tokens := strings.Fields(text)
	best := 0.0
	for docIndex := range docs {
		total := 0.0
		for _, token := range tokens {
			total += model.Score(docIndex, token)
		}
		if score := total / float64(len(tokens)); score > best {
			best = score
		}
	}
	return best
}

func lengthBonus(text string) float64 {
	if strings.Contains(text, " ") {
		return 1.2
	}
	return 1.0
}
