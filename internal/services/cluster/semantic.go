package cluster

import (
	"sort"

	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/textkit"
)

const (
	semanticAbsorbThreshold = 0.4
	semanticAssignThreshold = 0.3
)

// semanticGroups clusters greedily around high-volume centers: walking
// keywords by volume descending, each unassigned keyword starts a group and
// absorbs every unassigned candidate similar enough to it. Undersized groups
// release their members; leftovers join the best surviving group or a
// trailing misc group.
func semanticGroups(keywords []models.Keyword, minSize int) [][]int {
	order := volumeOrder(keywords)
	assigned := make([]bool, len(keywords))

	var groups [][]int
	for _, center := range order {
		if assigned[center] {
			continue
		}
		group := []int{center}
		assigned[center] = true
		for _, candidate := range order {
			if assigned[candidate] {
				continue
			}
			if textkit.Similarity(keywords[center].Text, keywords[candidate].Text) > semanticAbsorbThreshold {
				group = append(group, candidate)
				assigned[candidate] = true
			}
		}
		groups = append(groups, group)
	}

	kept := groups[:0]
	for _, group := range groups {
		if len(group) < minSize {
			for _, member := range group {
				assigned[member] = false
			}
			continue
		}
		kept = append(kept, group)
	}
	groups = kept

	var misc []int
	for _, i := range order {
		if assigned[i] {
			continue
		}
		best, bestSim := -1, -1.0
		for g, group := range groups {
			// the first member is the center the group grew from
			sim := textkit.Similarity(keywords[i].Text, keywords[group[0]].Text)
			if sim >= semanticAssignThreshold && sim > bestSim {
				bestSim = sim
				best = g
			}
		}
		if best >= 0 {
			groups[best] = append(groups[best], i)
		} else {
			misc = append(misc, i)
		}
	}
	if len(misc) >= minSize {
		groups = append(groups, misc)
	}

	return groups
}

// volumeOrder returns keyword indices sorted by search volume descending,
// original order on ties.
func volumeOrder(keywords []models.Keyword) []int {
	order := make([]int, len(keywords))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keywords[order[a]].SearchVolume > keywords[order[b]].SearchVolume
	})
	return order
}
