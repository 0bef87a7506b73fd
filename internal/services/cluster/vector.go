package cluster

import (
	"math"
	"sort"

	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/textkit"
)

// denseFeatureCount is the number of non-text dimensions appended to each
// keyword vector: volume, competition, word count, CPC.
const denseFeatureCount = 4

// vectorize builds one feature vector per keyword: TF-IDF weights over the
// stemmed token vocabulary of the whole set, followed by four dense features.
func vectorize(keywords []models.Keyword) [][]float64 {
	docs := make([][]string, len(keywords))
	for i, k := range keywords {
		docs[i] = textkit.StemTokens(textkit.Tokenize(k.Text))
	}
	model := textkit.NewTfIdf(docs)

	var terms []string
	seen := make(map[string]struct{})
	for _, doc := range docs {
		for _, term := range doc {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}

	vectors := make([][]float64, len(keywords))
	for i, k := range keywords {
		vec := make([]float64, len(terms)+denseFeatureCount)
		for _, term := range docs[i] {
			vec[index[term]] = model.Score(i, term)
		}

		base := len(terms)
		vec[base] = math.Log(float64(k.SearchVolume)+1) / 10
		vec[base+1] = k.Competition.Feature()
		vec[base+2] = float64(k.WordCount()) / 5
		vec[base+3] = math.Log(k.CPCLow+1) / 5

		vectors[i] = vec
	}

	return vectors
}

// euclidean returns the straight-line distance between two vectors of equal
// dimension.
func euclidean(a, b []float64) float64 {
	return math.Sqrt(squaredDistance(a, b))
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
