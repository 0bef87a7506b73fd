package cluster

import (
	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/textkit"
)

// EnsureUniqueKeywords makes keyword ownership exclusive: a keyword held by
// several clusters stays with the one whose pillar it is most similar to
// (ties favor the earlier cluster). Clusters left below the minimum size
// dissolve into the best surviving cluster. Pillar topics are never changed
// here, so AI renames survive the pass. An already-unique set comes back
// untouched.
func (s *Service) EnsureUniqueKeywords(clusters []models.Cluster, minClusterSize int) []models.Cluster {
	if len(clusters) == 0 {
		return clusters
	}
	if minClusterSize < 1 {
		minClusterSize = defaultMinClusterSize
	}

	changed := false

	for i := range clusters {
		if dedupeKeywords(&clusters[i]) {
			clusters[i].Recompute()
			changed = true
		}
	}

	if resolveDuplicates(clusters) {
		changed = true
	}

	if dissolveUndersized(clusters, minClusterSize) {
		changed = true
	}

	if !changed {
		return clusters
	}

	out := clusters[:0]
	for _, c := range clusters {
		if len(c.Keywords) > 0 {
			out = append(out, c)
		}
	}

	s.logger.Debug().Int("clusters", len(out)).Msg("Keyword uniqueness enforced")
	return out
}

// resolveDuplicates removes each multiply-owned keyword from every cluster
// except the one with the most similar pillar.
func resolveDuplicates(clusters []models.Cluster) bool {
	owners := make(map[string][]int)
	var order []string
	for i := range clusters {
		for _, k := range clusters[i].Keywords {
			if _, ok := owners[k.Text]; !ok {
				order = append(order, k.Text)
			}
			owners[k.Text] = append(owners[k.Text], i)
		}
	}

	changed := false
	for _, text := range order {
		indices := owners[text]
		if len(indices) < 2 {
			continue
		}

		best := indices[0]
		bestSim := textkit.Similarity(text, clusters[best].PillarTopic)
		for _, idx := range indices[1:] {
			if sim := textkit.Similarity(text, clusters[idx].PillarTopic); sim > bestSim {
				bestSim = sim
				best = idx
			}
		}

		for _, idx := range indices {
			if idx == best {
				continue
			}
			if clusters[idx].RemoveKeyword(text) {
				clusters[idx].Recompute()
				changed = true
			}
		}
	}
	return changed
}

// dissolveUndersized moves keywords out of clusters below the minimum size
// into the most similar viable cluster, skipping keywords the target already
// holds. When no cluster is viable the whole set collapses into the first
// cluster rather than losing everything; a lone undersized cluster is left
// alone, covering inputs smaller than the minimum size.
func dissolveUndersized(clusters []models.Cluster, minClusterSize int) bool {
	var big, small []int
	for i := range clusters {
		if len(clusters[i].Keywords) >= minClusterSize {
			big = append(big, i)
		} else {
			small = append(small, i)
		}
	}

	if len(small) == 0 {
		return false
	}

	if len(big) == 0 {
		if len(clusters) < 2 {
			return false
		}
		first := &clusters[0]
		for i := 1; i < len(clusters); i++ {
			first.Keywords = append(first.Keywords, clusters[i].Keywords...)
			clusters[i].Keywords = nil
		}
		dedupeKeywords(first)
		first.Recompute()
		if first.PillarTopic == "" {
			first.PillarTopic = choosePillar(first.Keywords)
		}
		return true
	}

	touched := make(map[int]struct{})
	for _, idx := range small {
		for _, k := range clusters[idx].Keywords {
			best, bestSim := -1, -1.0
			for _, b := range big {
				if sim := textkit.Similarity(k.Text, clusters[b].PillarTopic); sim > bestSim {
					bestSim = sim
					best = b
				}
			}
			if best >= 0 && !clusters[best].ContainsKeyword(k.Text) {
				clusters[best].Keywords = append(clusters[best].Keywords, k)
				touched[best] = struct{}{}
			}
		}
		clusters[idx].Keywords = nil
	}
	for b := range touched {
		clusters[b].Recompute()
	}
	return true
}

// dedupeKeywords removes repeated canonical texts within one cluster,
// keeping the first occurrence.
func dedupeKeywords(c *models.Cluster) bool {
	seen := make(map[string]struct{}, len(c.Keywords))
	kept := c.Keywords[:0]
	removed := false
	for _, k := range c.Keywords {
		if _, dup := seen[k.Text]; dup {
			removed = true
			continue
		}
		seen[k.Text] = struct{}{}
		kept = append(kept, k)
	}
	c.Keywords = kept
	return removed
}
