package interfaces

import (
	"context"

	"github.com/ternarybob/indago/internal/models"
)

// RegroupResult carries the AI's cluster regrouping advice: optional renames
// keyed by cluster index and the indices it considers priority targets.
type RegroupResult struct {
	Renames    map[int]string
	Priorities []int
}

// KeywordReassignment moves one keyword to another cluster.
type KeywordReassignment struct {
	Keyword     string
	FromCluster string
	ToCluster   string
}

// MergeSuggestion proposes folding the source cluster into the target.
type MergeSuggestion struct {
	SourceID string
	TargetID string
}

// ScrutinyResult is the AI's audit of cluster membership.
type ScrutinyResult struct {
	Reassignments []KeywordReassignment
	Merges        []MergeSuggestion
	Renames       map[string]string
}

// ClusterEnhancement is the AI's enrichment of a single cluster.
type ClusterEnhancement struct {
	PillarTopic     string
	Description     string
	ContentStrategy string
}

// AIEnhancer covers the four request kinds the pipeline may make against the
// generative AI service. Every method returns an error instead of partial
// data when the response does not parse; callers downgrade those errors to
// job warnings.
type AIEnhancer interface {
	// GenerateSeedKeywords asks for up to max short keyword phrases in the
	// target language, derived from the scraped content.
	GenerateSeedKeywords(ctx context.Context, scrape *models.ScrapeResult, language string, max int) ([]string, error)

	// RegroupSuggestions asks for cluster renames and priority picks.
	RegroupSuggestions(ctx context.Context, clusters []models.Cluster, siteContext *models.SiteContext, keywords []models.Keyword, language string) (*RegroupResult, error)

	// Scrutinize audits keyword ownership across clusters.
	Scrutinize(ctx context.Context, clusters []models.Cluster, keywords []models.Keyword, siteContext *models.SiteContext, language string) (*ScrutinyResult, error)

	// EnhanceCluster names and describes a single cluster.
	EnhanceCluster(ctx context.Context, cluster *models.Cluster, siteContext *models.SiteContext, language string) (*ClusterEnhancement, error)

	// Available reports whether an AI provider is usable.
	Available() bool
}
