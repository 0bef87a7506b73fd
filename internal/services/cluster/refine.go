package cluster

import (
	"math/rand"

	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/textkit"
)

const (
	coherenceSplitThreshold = 0.3
	coherenceSplitMinSize   = 10
	mergeThreshold          = 0.6
	mixedClusterSize        = 30
	coherenceSampleSize     = 10
)

// coherence is the average pairwise similarity over up to the first ten
// keywords of a cluster. Single-keyword clusters are perfectly coherent.
func coherence(c *models.Cluster) float64 {
	sample := c.TopKeywords(coherenceSampleSize)
	if len(sample) < 2 {
		return 1
	}

	sum := 0.0
	pairs := 0
	for i := 0; i < len(sample); i++ {
		for j := i + 1; j < len(sample); j++ {
			sum += textkit.Similarity(sample[i].Text, sample[j].Text)
			pairs++
		}
	}
	return sum / float64(pairs)
}

// refineWithSemantics splits large incoherent clusters. A cluster is split
// when its coherence is below the threshold and it is big enough that a
// split can produce viable sub-clusters.
func (s *Service) refineWithSemantics(clusters []models.Cluster, minSize int, rng *rand.Rand) []models.Cluster {
	var out []models.Cluster
	for _, c := range clusters {
		if coherence(&c) < coherenceSplitThreshold && len(c.Keywords) > coherenceSplitMinSize {
			out = append(out, s.splitCluster(c, minSize, rng)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// splitMixedClusters breaks up oversized clusters regardless of coherence.
func (s *Service) splitMixedClusters(clusters []models.Cluster, minSize int, rng *rand.Rand) []models.Cluster {
	var out []models.Cluster
	for _, c := range clusters {
		if len(c.Keywords) > mixedClusterSize {
			out = append(out, s.splitCluster(c, minSize, rng)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// splitCluster re-runs k-means over one cluster's keywords with
// k = min(3, size/5). If any sub-cluster would fall below the minimum size
// the split is abandoned and the original cluster returned, so no keyword is
// lost to a bad split.
func (s *Service) splitCluster(c models.Cluster, minSize int, rng *rand.Rand) []models.Cluster {
	k := len(c.Keywords) / 5
	if k > 3 {
		k = 3
	}
	if k < 2 {
		return []models.Cluster{c}
	}

	groups := kmeansGroups(vectorize(c.Keywords), k, rng)
	if len(groups) < 2 {
		return []models.Cluster{c}
	}
	for _, group := range groups {
		if len(group) < minSize {
			return []models.Cluster{c}
		}
	}

	out := make([]models.Cluster, 0, len(groups))
	for _, group := range groups {
		members := make([]models.Keyword, len(group))
		for i, idx := range group {
			members[i] = c.Keywords[idx]
		}
		out = append(out, s.newCluster(members, c.Algorithm))
	}

	s.logger.Debug().
		Str("pillar", c.PillarTopic).
		Int("size", len(c.Keywords)).
		Int("splits", len(out)).
		Msg("Split incoherent cluster")

	return out
}

// mergeSimilarClusters folds near-duplicate clusters into the earlier one.
// Cluster similarity blends pillar similarity with the average pairwise
// similarity of the two top-5 keyword sets.
func (s *Service) mergeSimilarClusters(clusters []models.Cluster) []models.Cluster {
	for i := 0; i < len(clusters); i++ {
		for j := i + 1; j < len(clusters); {
			if clusterSimilarity(&clusters[i], &clusters[j]) > mergeThreshold {
				s.logger.Debug().
					Str("into", clusters[i].PillarTopic).
					Str("from", clusters[j].PillarTopic).
					Msg("Merging similar clusters")

				clusters[i].Keywords = append(clusters[i].Keywords, clusters[j].Keywords...)
				clusters[i].Recompute()
				clusters[i].PillarTopic = choosePillar(clusters[i].Keywords)
				clusters = append(clusters[:j], clusters[j+1:]...)
				continue
			}
			j++
		}
	}
	return clusters
}

// clusterSimilarity = 0.4·sim(pillars) + 0.6·avg pairwise sim of top-5 sets.
func clusterSimilarity(a, b *models.Cluster) float64 {
	pillarSim := textkit.Similarity(a.PillarTopic, b.PillarTopic)

	topA := a.TopKeywords(5)
	topB := b.TopKeywords(5)
	if len(topA) == 0 || len(topB) == 0 {
		return 0.4 * pillarSim
	}

	sum := 0.0
	for _, ka := range topA {
		for _, kb := range topB {
			sum += textkit.Similarity(ka.Text, kb.Text)
		}
	}
	avg := sum / float64(len(topA)*len(topB))

	return 0.4*pillarSim + 0.6*avg
}
