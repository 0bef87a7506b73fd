package cluster

import (
	"math"

	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/textkit"
)

const (
	dbscanEpsilon          = 0.3
	dbscanMinPoints        = 2
	noiseReassignThreshold = 0.3
)

const (
	labelUnvisited = -2
	labelNoise     = -1
)

// dbscanGroups density-clusters keywords over a blended distance of text
// similarity and search-volume proximity. Noise points are reattached to the
// cluster whose top keywords they resemble most; the rest form a misc group
// when there are enough of them.
func dbscanGroups(keywords []models.Keyword, minSize int) [][]int {
	n := len(keywords)
	dist := distanceMatrix(keywords)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = labelUnvisited
	}

	clusterID := 0
	for i := 0; i < n; i++ {
		if labels[i] != labelUnvisited {
			continue
		}
		neighbors := regionQuery(dist, i)
		if len(neighbors) < dbscanMinPoints {
			labels[i] = labelNoise
			continue
		}

		labels[i] = clusterID
		queue := append([]int(nil), neighbors...)
		for head := 0; head < len(queue); head++ {
			j := queue[head]
			if labels[j] == labelNoise {
				labels[j] = clusterID
			}
			if labels[j] != labelUnvisited {
				continue
			}
			labels[j] = clusterID
			if expansion := regionQuery(dist, j); len(expansion) >= dbscanMinPoints {
				queue = append(queue, expansion...)
			}
		}
		clusterID++
	}

	groups := make([][]int, clusterID)
	var noise []int
	for i, label := range labels {
		if label == labelNoise {
			noise = append(noise, i)
			continue
		}
		groups[label] = append(groups[label], i)
	}

	var misc []int
	for _, i := range noise {
		if best := bestGroupBySimilarity(keywords, groups, i); best >= 0 {
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

// distanceMatrix blends text dissimilarity with log-volume distance:
// d(i,j) = (1 - sim) + 0.2·|log(vol_i+1) - log(vol_j+1)|/10.
func distanceMatrix(keywords []models.Keyword) [][]float64 {
	n := len(keywords)
	logVolumes := make([]float64, n)
	for i, k := range keywords {
		logVolumes[i] = math.Log(float64(k.SearchVolume) + 1)
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := (1 - textkit.Similarity(keywords[i].Text, keywords[j].Text)) +
				0.2*math.Abs(logVolumes[i]-logVolumes[j])/10
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

// regionQuery returns all points within epsilon of point i, including i.
func regionQuery(dist [][]float64, i int) []int {
	var neighbors []int
	for j := range dist[i] {
		if dist[i][j] <= dbscanEpsilon {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// bestGroupBySimilarity finds the group whose top-5 keywords (by volume) are
// on average most similar to keyword i, requiring the average to clear the
// reassignment threshold. Returns -1 when nothing qualifies.
func bestGroupBySimilarity(keywords []models.Keyword, groups [][]int, i int) int {
	best := -1
	bestAvg := noiseReassignThreshold
	for g, group := range groups {
		if len(group) == 0 {
			continue
		}
		avg := avgSimilarityToTop(keywords, group, keywords[i].Text, 5)
		if avg > bestAvg {
			bestAvg = avg
			best = g
		}
	}
	return best
}

// avgSimilarityToTop averages similarity between text and the top-n group
// members by search volume.
func avgSimilarityToTop(keywords []models.Keyword, group []int, text string, n int) float64 {
	top := topByVolume(keywords, group, n)
	if len(top) == 0 {
		return 0
	}
	sum := 0.0
	for _, idx := range top {
		sum += textkit.Similarity(text, keywords[idx].Text)
	}
	return sum / float64(len(top))
}

// topByVolume returns up to n member indices ordered by volume descending.
func topByVolume(keywords []models.Keyword, group []int, n int) []int {
	sorted := append([]int(nil), group...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && keywords[sorted[j]].SearchVolume > keywords[sorted[j-1]].SearchVolume; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
