package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/indago/internal/models"
)

func TestDBSCANGroupsDensityClusters(t *testing.T) {
	keywords := []models.Keyword{
		kw("dental implants", 5000),
		kw("dental implant cost", 3000),
		kw("dental implant surgery", 2500),
		kw("teeth whitening", 2000),
		kw("teeth whitening cost", 1000),
		kw("teeth whitening kit", 900),
		kw("laser whitening", 300),
		kw("crypto wallet", 100),
	}

	groups := dbscanGroups(keywords, 3)

	require.Len(t, groups, 2)
	assert.Equal(t, []int{0, 1, 2}, groups[0])
	// laser whitening is noise but close enough to rejoin the whitening group
	assert.Equal(t, []int{3, 4, 5, 6}, groups[1])
}

func TestDBSCANGroupsMiscPool(t *testing.T) {
	keywords := []models.Keyword{
		kw("teeth whitening", 2000),
		kw("teeth whitening cost", 1000),
		kw("crypto wallet", 100),
		kw("stock market", 90),
	}

	groups := dbscanGroups(keywords, 2)

	require.Len(t, groups, 2)
	assert.Equal(t, []int{0, 1}, groups[0])
	assert.Equal(t, []int{2, 3}, groups[1])
}

func TestDBSCANGroupsDropsSparseNoise(t *testing.T) {
	keywords := []models.Keyword{
		kw("teeth whitening", 2000),
		kw("teeth whitening cost", 1000),
		kw("teeth whitening kit", 900),
		kw("crypto wallet", 100),
	}

	groups := dbscanGroups(keywords, 3)

	require.Len(t, groups, 1)
	assert.Equal(t, []int{0, 1, 2}, groups[0])
}

func TestDistanceMatrix(t *testing.T) {
	dist := distanceMatrix([]models.Keyword{
		kw("teeth whitening", 2000),
		kw("teeth whitening cost", 1000),
	})

	require.Len(t, dist, 2)
	assert.Zero(t, dist[0][0])
	assert.Zero(t, dist[1][1])
	// similarity caps at 1 here, leaving only the volume term
	assert.InDelta(t, 0.01384, dist[0][1], 0.0005)
	assert.Equal(t, dist[0][1], dist[1][0])
}