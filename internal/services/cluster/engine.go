package cluster

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

const defaultMinClusterSize = 3

// randSeed fixes the k-means starting points so the same keyword set always
// clusters the same way.
const randSeed int64 = 1

// Service groups keywords into topic clusters. It holds no state between
// calls, so one instance serves concurrent jobs.
type Service struct {
	logger arbor.ILogger
}

var _ interfaces.ClusterEngine = (*Service)(nil)

func NewService(logger arbor.ILogger) interfaces.ClusterEngine {
	return &Service{
		logger: logger.WithPrefix("cluster"),
	}
}

// Cluster partitions keywords with the requested algorithm and returns
// clusters with unique keyword ownership. Empty input yields no clusters and
// no error; fewer keywords than the minimum cluster size yield a single
// cluster holding them all.
func (s *Service) Cluster(keywords []models.Keyword, opts interfaces.ClusterOptions) ([]models.Cluster, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	minSize := opts.MinClusterSize
	if minSize < 1 {
		minSize = defaultMinClusterSize
	}
	algorithm := opts.Algorithm
	if algorithm == "" {
		algorithm = models.AlgorithmHybrid
	}

	if len(keywords) < minSize {
		return []models.Cluster{s.newCluster(keywords, algorithm)}, nil
	}

	rng := rand.New(rand.NewSource(randSeed))

	var clusters []models.Cluster
	switch algorithm {
	case models.AlgorithmKMeans:
		groups := kmeansGroups(vectorize(keywords), defaultK(len(keywords)), rng)
		clusters = s.buildClusters(keywords, groups, algorithm)
	case models.AlgorithmDBSCAN:
		clusters = s.buildClusters(keywords, dbscanGroups(keywords, minSize), algorithm)
	case models.AlgorithmSemantic:
		clusters = s.buildClusters(keywords, semanticGroups(keywords, minSize), algorithm)
	case models.AlgorithmHybrid:
		groups := kmeansGroups(vectorize(keywords), defaultK(len(keywords)), rng)
		clusters = s.buildClusters(keywords, groups, algorithm)
		clusters = s.refineWithSemantics(clusters, minSize, rng)
		clusters = s.mergeSimilarClusters(clusters)
		clusters = s.splitMixedClusters(clusters, minSize, rng)
	default:
		return nil, models.NewStageError(models.StepClustering, models.ErrInvalidInput, "unknown clustering algorithm %q", algorithm)
	}

	clusters = s.EnsureUniqueKeywords(clusters, minSize)

	s.logger.Debug().
		Str("algorithm", algorithm).
		Int("keywords", len(keywords)).
		Int("clusters", len(clusters)).
		Msg("Clustering complete")

	return clusters, nil
}

// SortAndRank orders clusters by value score, relevance, total volume and
// keyword count, all descending, then assigns ranks starting at 1.
func (s *Service) SortAndRank(clusters []models.Cluster) []models.Cluster {
	sort.SliceStable(clusters, func(a, b int) bool {
		if clusters[a].ClusterValueScore != clusters[b].ClusterValueScore {
			return clusters[a].ClusterValueScore > clusters[b].ClusterValueScore
		}
		if clusters[a].RelevanceScore != clusters[b].RelevanceScore {
			return clusters[a].RelevanceScore > clusters[b].RelevanceScore
		}
		if clusters[a].TotalSearchVolume != clusters[b].TotalSearchVolume {
			return clusters[a].TotalSearchVolume > clusters[b].TotalSearchVolume
		}
		return len(clusters[a].Keywords) > len(clusters[b].Keywords)
	})
	for i := range clusters {
		clusters[i].Rank = i + 1
	}
	return clusters
}

// newCluster builds a cluster from its member keywords, computes aggregates
// and picks the pillar topic.
func (s *Service) newCluster(members []models.Keyword, algorithm string) models.Cluster {
	c := models.Cluster{
		ID:        uuid.NewString(),
		Algorithm: algorithm,
		Keywords:  append([]models.Keyword(nil), members...),
	}
	c.Recompute()
	c.PillarTopic = choosePillar(c.Keywords)
	return c
}

func (s *Service) buildClusters(keywords []models.Keyword, groups [][]int, algorithm string) []models.Cluster {
	clusters := make([]models.Cluster, 0, len(groups))
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		members := make([]models.Keyword, 0, len(group))
		for _, i := range group {
			members = append(members, keywords[i])
		}
		clusters = append(clusters, s.newCluster(members, algorithm))
	}
	return clusters
}
