package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultK(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 1},
		{5, 3},
		{18, 3},
		{32, 4},
		{50, 5},
		{200, 10},
		{1000, 20},
	}
	for _, tc := range tests {
		assert.Equalf(t, tc.want, defaultK(tc.n), "defaultK(%d)", tc.n)
	}
}

func TestKMeansGroupsSeparatesBlobs(t *testing.T) {
	vectors := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{5, 5}, {5.1, 5}, {5, 5.1},
	}

	groups := kmeansGroups(vectors, 2, testRand())

	require.Len(t, groups, 2)
	for _, group := range groups {
		if len(group) > 0 && group[0] < 3 {
			assert.ElementsMatch(t, []int{0, 1, 2}, group)
		} else {
			assert.ElementsMatch(t, []int{3, 4, 5}, group)
		}
	}
}

func TestKMeansGroupsCoverEveryPointOnce(t *testing.T) {
	vectors := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{5, 5}, {5.1, 5}, {5, 5.1},
		{10, 0}, {10.1, 0},
	}

	groups := kmeansGroups(vectors, 3, testRand())

	seen := make(map[int]int)
	for _, group := range groups {
		for _, i := range group {
			seen[i]++
		}
	}
	require.Len(t, seen, len(vectors))
	for i, n := range seen {
		assert.Equalf(t, 1, n, "point %d assigned %d times", i, n)
	}
}

func TestKMeansGroupsSingleCluster(t *testing.T) {
	vectors := [][]float64{{0, 0}, {1, 1}, {2, 2}}

	groups := kmeansGroups(vectors, 1, testRand())

	require.Len(t, groups, 1)
	assert.Equal(t, []int{0, 1, 2}, groups[0])
}

func TestKMeansGroupsClampsKToPointCount(t *testing.T) {
	vectors := [][]float64{{0, 0}, {5, 5}}

	groups := kmeansGroups(vectors, 5, testRand())

	require.LessOrEqual(t, len(groups), 2)
	seen := 0
	for _, group := range groups {
		seen += len(group)
	}
	assert.Equal(t, 2, seen)
}

func TestKMeansGroupsEmptyInput(t *testing.T) {
	assert.Nil(t, kmeansGroups(nil, 3, testRand()))
}