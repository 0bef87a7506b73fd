package cluster

import (
	"math"
	"strings"

	"github.com/ternarybob/indago/internal/models"
)

// choosePillar picks the keyword that best names the cluster: volume scaled
// by a phrase-length multiplier, plus credit for being contained in other
// member keywords. Ties keep the earliest keyword.
func choosePillar(keywords []models.Keyword) string {
	if len(keywords) == 0 {
		return ""
	}

	best := 0
	bestScore := math.Inf(-1)
	for i, k := range keywords {
		score := math.Log(float64(k.SearchVolume)+1)*lengthMultiplier(k.WordCount()) +
			0.5*float64(containmentCount(keywords, i))
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return keywords[best].Text
}

// lengthMultiplier favors 2-3 word phrases as cluster names: single words
// are too broad, long tails too narrow. Exactly four words is neutral.
func lengthMultiplier(wordCount int) float64 {
	switch {
	case wordCount >= 2 && wordCount <= 3:
		return 1.2
	case wordCount == 1:
		return 0.8
	case wordCount > 4:
		return 0.7
	default:
		return 1.0
	}
}

// containmentCount counts how many other cluster keywords contain keyword i
// as a substring.
func containmentCount(keywords []models.Keyword, i int) int {
	count := 0
	for j, other := range keywords {
		if j == i {
			continue
		}
		if strings.Contains(other.Text, keywords[i].Text) {
			count++
		}
	}
	return count
}
