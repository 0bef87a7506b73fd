package cluster

import (
	"math"
	"strings"

	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/textkit"
)

const (
	relevanceDropThreshold = 0.01
	substringBoost         = 0.9
	shortKeywordBoost      = 0.75
	prefixMatchLen         = 4
)

// contextProfile is the site context prepared for relevance scoring: the
// stemmed content-token set and the normalized full text for substring
// checks.
type contextProfile struct {
	tokens map[string]struct{}
	text   string
}

func buildContextProfile(siteContext *models.SiteContext) *contextProfile {
	if siteContext.IsEmpty() {
		return nil
	}
	joined := strings.Join(siteContext.Texts(), " ")
	tokens := textkit.TokenSet(joined)
	if len(tokens) == 0 {
		return nil
	}
	return &contextProfile{
		tokens: tokens,
		text:   strings.Join(strings.Fields(strings.ToLower(joined)), " "),
	}
}

// ApplyRelevanceScores filters keywords against the site context and scores
// each surviving cluster's relevance. An empty context leaves everything
// unchanged. Clusters that lose keywords and end up below the minimum size
// are dropped, as are clusters left empty.
func (s *Service) ApplyRelevanceScores(clusters []models.Cluster, siteContext *models.SiteContext, minClusterSize int) []models.Cluster {
	profile := buildContextProfile(siteContext)
	if profile == nil {
		return clusters
	}
	if minClusterSize < 1 {
		minClusterSize = defaultMinClusterSize
	}

	out := clusters[:0]
	for _, c := range clusters {
		kept := c.Keywords[:0]
		var relevances []float64
		removed := false

		for _, k := range c.Keywords {
			rel, tokenCount := keywordRelevance(k.Text, profile)
			if rel <= relevanceDropThreshold && tokenCount > 0 {
				removed = true
				continue
			}
			kept = append(kept, k)
			relevances = append(relevances, rel)
		}
		c.Keywords = kept

		if len(c.Keywords) == 0 {
			s.logger.Debug().Str("pillar", c.PillarTopic).Msg("Cluster dropped: no relevant keywords")
			continue
		}
		if removed && len(c.Keywords) < minClusterSize {
			s.logger.Debug().
				Str("pillar", c.PillarTopic).
				Int("remaining", len(c.Keywords)).
				Msg("Cluster dropped: below minimum size after relevance filter")
			continue
		}

		c.RelevanceScore = clusterRelevance(c.Keywords, relevances)
		c.Recompute()
		out = append(out, c)
	}

	return out
}

// keywordRelevance scores one keyword against the context profile and
// returns the score with the keyword's content-token count. Keywords with
// no content tokens score zero but are never dropped for it.
func keywordRelevance(text string, profile *contextProfile) (float64, int) {
	keywordTokens := textkit.TokenSet(text)
	if len(keywordTokens) == 0 {
		return 0, 0
	}

	matches := 0
	for token := range keywordTokens {
		if tokenMatchesContext(token, profile.tokens) {
			matches++
		}
	}
	matchRatio := float64(matches) / float64(len(keywordTokens))

	rel := 0.7*matchRatio + 0.3*textkit.Jaccard(keywordTokens, profile.tokens)
	if rel > 1 {
		rel = 1
	}

	if strings.Contains(profile.text, models.CanonicalKeywordText(text)) && rel < substringBoost {
		rel = substringBoost
	}
	if matchRatio >= 0.6 && len(keywordTokens) <= 3 && rel < shortKeywordBoost {
		rel = shortKeywordBoost
	}

	return rel, len(keywordTokens)
}

// tokenMatchesContext accepts an exact stemmed match or a shared prefix of
// at least prefixMatchLen characters, so related word forms ("dental",
// "dentistry") still count as matches.
func tokenMatchesContext(token string, context map[string]struct{}) bool {
	if _, ok := context[token]; ok {
		return true
	}
	if len(token) < prefixMatchLen {
		return false
	}
	for other := range context {
		if len(other) >= prefixMatchLen && token[:prefixMatchLen] == other[:prefixMatchLen] {
			return true
		}
	}
	return false
}

// clusterRelevance aggregates keyword relevances with volume-based weights:
// 0.7·weightedAvg + 0.3·max, weights max(1, log10(volume+10)).
func clusterRelevance(keywords []models.Keyword, relevances []float64) float64 {
	if len(keywords) == 0 {
		return 0
	}

	weightedSum := 0.0
	weightTotal := 0.0
	maxRel := 0.0
	for i, k := range keywords {
		weight := math.Max(1, math.Log10(float64(k.SearchVolume)+10))
		weightedSum += relevances[i] * weight
		weightTotal += weight
		if relevances[i] > maxRel {
			maxRel = relevances[i]
		}
	}

	score := 0.7*(weightedSum/weightTotal) + 0.3*maxRel
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}
