package textkit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTfIdfScores(t *testing.T) {
	docs := [][]string{
		{"seo", "services", "seo"},
		{"web", "design"},
		{"seo", "audit"},
	}
	model := NewTfIdf(docs)

	require.Equal(t, 3, model.DocCount())

	// "seo" appears in 2 of 3 docs
	expectedIdf := math.Log(4.0/3.0) + 1
	assert.InDelta(t, expectedIdf, model.Idf("seo"), 1e-9)

	// tf of "seo" in doc 0 is 2/3
	assert.InDelta(t, (2.0/3.0)*expectedIdf, model.Score(0, "seo"), 1e-9)

	// absent term scores zero
	assert.Equal(t, 0.0, model.Score(0, "design"))
}

func TestTfIdfUnseenTermIdf(t *testing.T) {
	model := NewTfIdf([][]string{{"alpha"}, {"beta"}})

	// df=0 gives the maximum idf for the collection
	assert.InDelta(t, math.Log(3.0)+1, model.Idf("gamma"), 1e-9)
}

func TestListTermsOrdering(t *testing.T) {
	docs := [][]string{
		{"dental", "dental", "clinic", "zurich"},
		{"dental", "insurance"},
	}
	model := NewTfIdf(docs)

	terms := model.ListTerms(0)
	require.Len(t, terms, 3)

	// repeated rare-ish term first, scores non-increasing
	for i := 1; i < len(terms); i++ {
		assert.GreaterOrEqual(t, terms[i-1].Score, terms[i].Score)
	}
	assert.Equal(t, "dental", terms[0].Term)
}

func TestListTermsOutOfRange(t *testing.T) {
	model := NewTfIdf(nil)
	assert.Nil(t, model.ListTerms(0))
	assert.Nil(t, model.ListTerms(-1))
}
