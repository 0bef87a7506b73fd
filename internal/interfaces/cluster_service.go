package interfaces

import (
	"github.com/ternarybob/indago/internal/models"
)

// ClusterOptions select and bound a clustering run.
type ClusterOptions struct {
	Algorithm      string
	MinClusterSize int
}

// ClusterEngine groups keywords into topic clusters and maintains the
// cluster-set invariants: unique keyword ownership, aggregates derived from
// membership, relevance against site context, value scoring, and ranking.
type ClusterEngine interface {
	// Cluster runs the selected algorithm and the refinement pipeline.
	// Zero keywords yield an empty list; fewer than MinClusterSize yield a
	// single cluster holding everything.
	Cluster(keywords []models.Keyword, opts ClusterOptions) ([]models.Cluster, error)

	// EnsureUniqueKeywords resolves duplicate ownership: each keyword goes
	// to the cluster whose pillar it is most similar to; ties favor the
	// earlier cluster. Undersized clusters dissolve into the best remaining
	// one. Running it on an already-unique set is a no-op.
	EnsureUniqueKeywords(clusters []models.Cluster, minClusterSize int) []models.Cluster

	// ApplyRelevanceScores filters keywords against the site context and
	// rescores clusters. An empty context leaves the set unchanged.
	ApplyRelevanceScores(clusters []models.Cluster, siteContext *models.SiteContext, minClusterSize int) []models.Cluster

	// SortAndRank orders clusters by value score, relevance, total volume,
	// and size, assigning ranks 1..K.
	SortAndRank(clusters []models.Cluster) []models.Cluster
}
