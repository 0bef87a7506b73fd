package cluster

import (
	"math"
	"math/rand"
)

const (
	minClusters          = 3
	maxClusters          = 20
	maxKMeansIterations  = 100
	convergenceTolerance = 1e-4
)

// defaultK sizes the k-means run: ⌊√(n/2)⌋ clamped to [minClusters,
// maxClusters], never more than n.
func defaultK(n int) int {
	k := int(math.Sqrt(float64(n) / 2))
	if k < minClusters {
		k = minClusters
	}
	if k > maxClusters {
		k = maxClusters
	}
	if k > n {
		k = n
	}
	return k
}

// kmeansGroups partitions vectors into at most k groups of indices using
// k-means++ seeding. The rng makes runs reproducible; empty groups are
// dropped.
func kmeansGroups(vectors [][]float64, k int, rng *rand.Rand) [][]int {
	n := len(vectors)
	if n == 0 {
		return nil
	}
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}

	centroids := seedCentroids(vectors, k, rng)
	assignment := make([]int, n)

	for iter := 0; iter < maxKMeansIterations; iter++ {
		for i, vec := range vectors {
			assignment[i] = nearestCentroid(vec, centroids)
		}

		moved := 0.0
		for c := range centroids {
			next := meanOfMembers(vectors, assignment, c)
			if next == nil {
				continue // empty centroid keeps its position
			}
			if d := euclidean(centroids[c], next); d > moved {
				moved = d
			}
			centroids[c] = next
		}

		if moved < convergenceTolerance {
			break
		}
	}

	groups := make([][]int, k)
	for i, c := range assignment {
		groups[c] = append(groups[c], i)
	}

	out := groups[:0]
	for _, group := range groups {
		if len(group) > 0 {
			out = append(out, group)
		}
	}
	return out
}

// seedCentroids implements k-means++: the first centroid is uniform random,
// each further one is drawn proportional to its squared distance from the
// nearest centroid chosen so far.
func seedCentroids(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, cloneVector(vectors[rng.Intn(len(vectors))]))

	distances := make([]float64, len(vectors))
	for len(centroids) < k {
		total := 0.0
		for i, vec := range vectors {
			best := math.MaxFloat64
			for _, c := range centroids {
				if d := squaredDistance(vec, c); d < best {
					best = d
				}
			}
			distances[i] = best
			total += best
		}

		if total == 0 {
			// all remaining points coincide with a centroid
			centroids = append(centroids, cloneVector(vectors[rng.Intn(len(vectors))]))
			continue
		}

		target := rng.Float64() * total
		pick := len(vectors) - 1
		acc := 0.0
		for i, d := range distances {
			acc += d
			if acc >= target {
				pick = i
				break
			}
		}
		centroids = append(centroids, cloneVector(vectors[pick]))
	}

	return centroids
}

func nearestCentroid(vec []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.MaxFloat64
	for c, centroid := range centroids {
		if d := squaredDistance(vec, centroid); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func meanOfMembers(vectors [][]float64, assignment []int, c int) []float64 {
	var mean []float64
	count := 0
	for i, a := range assignment {
		if a != c {
			continue
		}
		if mean == nil {
			mean = make([]float64, len(vectors[i]))
		}
		for d, v := range vectors[i] {
			mean[d] += v
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for d := range mean {
		mean[d] /= float64(count)
	}
	return mean
}

func cloneVector(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
