package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/indago/internal/models"
)

func TestSemanticGroupsByCenter(t *testing.T) {
	groups := semanticGroups(dentalKeywords(), 3)

	require.Len(t, groups, 2)
	assert.Equal(t, []int{0, 1, 2}, groups[0])
	assert.Equal(t, []int{3, 4, 5}, groups[1])
}

func TestSemanticGroupsMiscPool(t *testing.T) {
	keywords := []models.Keyword{
		kw("teeth whitening", 2000),
		kw("teeth whitening cost", 1000),
		kw("crypto wallet", 800),
		kw("stock market", 700),
	}

	groups := semanticGroups(keywords, 2)

	require.Len(t, groups, 2)
	assert.Equal(t, []int{0, 1}, groups[0])
	assert.Equal(t, []int{2, 3}, groups[1])
}

func TestSemanticGroupsAssignsLeftoverToNearCenter(t *testing.T) {
	keywords := []models.Keyword{
		kw("dental implant cost insurance coverage", 5000),
		kw("dental implant cost insurance plans", 4000),
		kw("dental implant financing options payment plans", 1000),
	}

	groups := semanticGroups(keywords, 2)

	require.Len(t, groups, 1)
	assert.Equal(t, []int{0, 1, 2}, groups[0])
}

func TestSemanticGroupsCentersFollowVolume(t *testing.T) {
	keywords := []models.Keyword{
		kw("teeth whitening cost", 1000),
		kw("teeth whitening kit", 900),
		kw("teeth whitening", 2000),
	}

	groups := semanticGroups(keywords, 3)

	require.Len(t, groups, 1)
	assert.Equal(t, []int{2, 0, 1}, groups[0])
}

func TestVolumeOrder(t *testing.T) {
	keywords := []models.Keyword{
		kw("dental veneers", 100),
		kw("dental implants", 300),
		kw("dental crowns", 100),
		kw("dental bridges", 200),
	}

	assert.Equal(t, []int{1, 3, 0, 2}, volumeOrder(keywords))
}