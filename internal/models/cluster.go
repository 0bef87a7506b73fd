package models

import (
	"math"
	"sort"
)

// Cluster groups keywords under a pillar topic. Aggregates are derived from
// Keywords and must be recomputed after every membership change.
type Cluster struct {
	ID                string      `json:"id"`
	PillarTopic       string      `json:"pillarTopic"`
	Keywords          []Keyword   `json:"keywords"`
	TotalSearchVolume int         `json:"totalSearchVolume"`
	AvgSearchVolume   float64     `json:"avgSearchVolume"`
	AvgCompetition    Competition `json:"avgCompetition"`
	RelevanceScore    float64     `json:"relevanceScore"`
	ClusterValueScore float64     `json:"clusterValueScore"`
	Algorithm         string      `json:"algorithm"`
	AIDescription     string      `json:"aiDescription,omitempty"`
	AIContentStrategy string      `json:"aiContentStrategy,omitempty"`
	AIPriority        bool        `json:"aiPriority,omitempty"`
	Rank              int         `json:"rank"`
}

// Recompute derives all aggregates from the current keyword membership:
// volume-descending keyword order, total and average volume, competition
// bucket, and the cluster value score. RelevanceScore is an input here,
// assigned by relevance filtering before scoring.
func (c *Cluster) Recompute() {
	sort.SliceStable(c.Keywords, func(i, j int) bool {
		return c.Keywords[i].SearchVolume > c.Keywords[j].SearchVolume
	})

	c.TotalSearchVolume = 0
	for _, k := range c.Keywords {
		c.TotalSearchVolume += k.SearchVolume
	}

	n := len(c.Keywords)
	if n == 0 {
		c.AvgSearchVolume = 0
		c.AvgCompetition = CompetitionUnknown
		c.ClusterValueScore = 0
		return
	}

	c.AvgSearchVolume = float64(c.TotalSearchVolume) / float64(n)

	var compSum float64
	for _, k := range c.Keywords {
		compSum += k.Competition.Value()
	}
	c.AvgCompetition = BucketCompetition(compSum / float64(n))

	c.ClusterValueScore = c.computeValueScore(compSum / float64(n))
}

// computeValueScore combines volume, competition, size, and relevance into a
// 0-100 score:
//
//	totalVolume: min(40, log10(total+1)*20)
//	avgVolume:   min(25, ln(avg+1)*10)
//	competition: max(0, min(20, (1-clamp((avg-1)/2,0,1))*20))
//	size:        min(10, ln(1+count)*4)
//	relevance:   relevanceScore*25
//
// clamped to [0,100] and rounded.
func (c *Cluster) computeValueScore(avgCompetitionValue float64) float64 {
	totalVolumeScore := math.Min(40, math.Log10(float64(c.TotalSearchVolume)+1)*20)
	avgVolumeScore := math.Min(25, math.Log(c.AvgSearchVolume+1)*10)

	compFactor := clamp01((avgCompetitionValue - 1) / 2)
	competitionScore := math.Max(0, math.Min(20, (1-compFactor)*20))

	sizeScore := math.Min(10, math.Log(1+float64(len(c.Keywords)))*4)
	relevanceScore := c.RelevanceScore * 25

	score := totalVolumeScore + avgVolumeScore + competitionScore + sizeScore + relevanceScore
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return math.Round(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ContainsKeyword reports whether the cluster already holds the canonical
// keyword text.
func (c *Cluster) ContainsKeyword(text string) bool {
	canonical := CanonicalKeywordText(text)
	for _, k := range c.Keywords {
		if k.Text == canonical {
			return true
		}
	}
	return false
}

// RemoveKeyword drops the canonical keyword text from the cluster and
// reports whether anything was removed. Callers must Recompute afterwards.
func (c *Cluster) RemoveKeyword(text string) bool {
	canonical := CanonicalKeywordText(text)
	for i, k := range c.Keywords {
		if k.Text == canonical {
			c.Keywords = append(c.Keywords[:i], c.Keywords[i+1:]...)
			return true
		}
	}
	return false
}

// TopKeywords returns up to n keywords in current (volume-descending) order.
func (c *Cluster) TopKeywords(n int) []Keyword {
	if n > len(c.Keywords) {
		n = len(c.Keywords)
	}
	return c.Keywords[:n]
}
