package ai

import (
	"strings"

	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// ApplyRegroup writes rename and priority advice onto the clusters in place.
// Out-of-range indices are ignored. Membership does not change, so no
// recompute is needed.
func ApplyRegroup(clusters []models.Cluster, res *interfaces.RegroupResult) {
	if res == nil {
		return
	}
	for idx, name := range res.Renames {
		if idx < 0 || idx >= len(clusters) {
			continue
		}
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			clusters[idx].PillarTopic = trimmed
		}
	}
	for _, idx := range res.Priorities {
		if idx >= 0 && idx < len(clusters) {
			clusters[idx].AIPriority = true
		}
	}
}

// ApplyScrutiny folds the audit into the cluster set: renames first, then
// merges, then individual reassignments. All aggregates are recomputed and
// clusters left without keywords are dropped. The input slice is reused.
func ApplyScrutiny(clusters []models.Cluster, res *interfaces.ScrutinyResult) []models.Cluster {
	if res == nil {
		return clusters
	}

	for i := range clusters {
		if name, ok := res.Renames[clusters[i].ID]; ok {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				clusters[i].PillarTopic = trimmed
			}
		}
	}

	for _, merge := range res.Merges {
		clusters = mergeClusters(clusters, merge.SourceID, merge.TargetID)
	}

	for _, move := range res.Reassignments {
		ApplyKeywordAssignment(clusters, move.Keyword, move.ToCluster)
	}

	out := clusters[:0]
	for i := range clusters {
		clusters[i].Recompute()
		if len(clusters[i].Keywords) > 0 {
			out = append(out, clusters[i])
		}
	}
	return out
}

// ApplyEnhancement writes the AI's cluster copy onto the cluster. The pillar
// is replaced only when the AI provided one; empty description or strategy
// fields are left for the narrative fallback to fill.
func ApplyEnhancement(c *models.Cluster, enh *interfaces.ClusterEnhancement) {
	if c == nil || enh == nil {
		return
	}
	if pillar := strings.TrimSpace(enh.PillarTopic); pillar != "" {
		c.PillarTopic = pillar
	}
	if description := strings.TrimSpace(enh.Description); description != "" {
		c.AIDescription = description
	}
	if strategy := strings.TrimSpace(enh.ContentStrategy); strategy != "" {
		c.AIContentStrategy = strategy
	}
}

// ApplyKeywordAssignment moves one keyword into the target cluster while
// keeping ownership unique: the keyword is removed from every other cluster.
// Unknown targets and keywords the set does not hold are no-ops. Reports
// whether anything changed; callers recompute aggregates afterwards.
func ApplyKeywordAssignment(clusters []models.Cluster, keyword, targetID string) bool {
	canonical := models.CanonicalKeywordText(keyword)
	if canonical == "" {
		return false
	}

	target := -1
	for i := range clusters {
		if clusters[i].ID == targetID {
			target = i
			break
		}
	}
	if target < 0 {
		return false
	}

	var carried *models.Keyword
	changed := false
	for i := range clusters {
		if i == target {
			continue
		}
		for j := range clusters[i].Keywords {
			if clusters[i].Keywords[j].Text == canonical {
				k := clusters[i].Keywords[j]
				carried = &k
				clusters[i].Keywords = append(clusters[i].Keywords[:j], clusters[i].Keywords[j+1:]...)
				changed = true
				break
			}
		}
	}

	if clusters[target].ContainsKeyword(canonical) {
		return changed
	}
	if carried == nil {
		return false
	}
	clusters[target].Keywords = append(clusters[target].Keywords, *carried)
	return true
}

// mergeClusters folds source into target, skipping keywords the target
// already holds. Self-merges and unknown ids are no-ops.
func mergeClusters(clusters []models.Cluster, sourceID, targetID string) []models.Cluster {
	if sourceID == targetID {
		return clusters
	}

	source, target := -1, -1
	for i := range clusters {
		switch clusters[i].ID {
		case sourceID:
			source = i
		case targetID:
			target = i
		}
	}
	if source < 0 || target < 0 {
		return clusters
	}

	for _, k := range clusters[source].Keywords {
		if !clusters[target].ContainsKeyword(k.Text) {
			clusters[target].Keywords = append(clusters[target].Keywords, k)
		}
	}
	return append(clusters[:source], clusters[source+1:]...)
}
