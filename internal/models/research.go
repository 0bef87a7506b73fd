package models

import "time"

// Scrape strategy selection for a research job.
const (
	StrategyAuto    = "auto"
	StrategyBrowser = "browser"
	StrategyHTTP    = "http"
)

// Clustering algorithm selection for a research job.
const (
	AlgorithmKMeans   = "kmeans"
	AlgorithmDBSCAN   = "dbscan"
	AlgorithmSemantic = "semantic"
	AlgorithmHybrid   = "hybrid"
)

// ResearchRequest is the POST /api/research payload.
type ResearchRequest struct {
	URL           string           `json:"url" validate:"required,url"`
	Country       string           `json:"country" validate:"required,number"`
	Language      string           `json:"language,omitempty" validate:"omitempty,alpha,min=2,max=5"`
	LanguageLabel string           `json:"languageLabel,omitempty"`
	Options       *ResearchOptions `json:"options,omitempty"`
}

// ResearchOptions are the per-job pipeline knobs. Zero values mean
// "use default"; Normalize applies defaults and clamps bounds.
type ResearchOptions struct {
	MaxPages       int    `json:"maxPages,omitempty" validate:"omitempty,min=1,max=100"`
	FollowLinks    *bool  `json:"followLinks,omitempty"`
	ScrapeStrategy string `json:"scrapeStrategy,omitempty" validate:"omitempty,oneof=auto browser http"`
	ClusterAlgo    string `json:"algorithm,omitempty" validate:"omitempty,oneof=kmeans dbscan semantic hybrid"`
	MinClusterSize int    `json:"minClusterSize,omitempty" validate:"omitempty,min=1"`
	UseAI          *bool  `json:"useAI,omitempty"`
}

// Normalize fills defaults and clamps out-of-range values in place. The
// defaultMaxPages argument comes from configuration.
func (o *ResearchOptions) Normalize(defaultMaxPages int) {
	if o.MaxPages <= 0 {
		o.MaxPages = defaultMaxPages
	}
	if o.MaxPages < 1 {
		o.MaxPages = 1
	}
	if o.MaxPages > 100 {
		o.MaxPages = 100
	}
	if o.FollowLinks == nil {
		t := true
		o.FollowLinks = &t
	}
	if o.ScrapeStrategy == "" {
		o.ScrapeStrategy = StrategyAuto
	}
	if o.ClusterAlgo == "" {
		o.ClusterAlgo = AlgorithmHybrid
	}
	if o.MinClusterSize < 1 {
		o.MinClusterSize = 3
	}
	if o.UseAI == nil {
		t := true
		o.UseAI = &t
	}
}

// ShouldFollowLinks reports the follow-links setting with its default.
func (o *ResearchOptions) ShouldFollowLinks() bool {
	return o.FollowLinks == nil || *o.FollowLinks
}

// AIEnabled reports the use-AI setting with its default.
func (o *ResearchOptions) AIEnabled() bool {
	return o.UseAI == nil || *o.UseAI
}

// ResearchResult is the final payload attached to a completed job.
type ResearchResult struct {
	URL           string    `json:"url"`
	Country       string    `json:"country"`
	Language      string    `json:"language"`
	Clusters      []Cluster `json:"clusters"`
	TotalKeywords int       `json:"totalKeywords"`
	TotalClusters int       `json:"totalClusters"`
	ScrapedPages  int       `json:"scrapedPages"`
	Strategy      string    `json:"strategy"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// KeywordCount sums the keywords across all clusters.
func (r *ResearchResult) KeywordCount() int {
	total := 0
	for _, c := range r.Clusters {
		total += len(c.Keywords)
	}
	return total
}

// SiteContext captures what the scraped site is about. Its stemmed token set
// drives keyword relevance filtering; an empty context disables the filter.
type SiteContext struct {
	URL              string   `json:"url"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	PageTitles       []string `json:"pageTitles,omitempty"`
	MetaDescriptions []string `json:"metaDescriptions,omitempty"`
	Focus            []string `json:"focus,omitempty"`
}

// Texts returns every context fragment in a stable order for tokenization.
func (s *SiteContext) Texts() []string {
	out := make([]string, 0, 3+len(s.PageTitles)+len(s.MetaDescriptions)+len(s.Focus))
	out = append(out, s.URL, s.Title, s.Description)
	out = append(out, s.PageTitles...)
	out = append(out, s.MetaDescriptions...)
	out = append(out, s.Focus...)
	return out
}

// IsEmpty reports whether the context carries no usable text.
func (s *SiteContext) IsEmpty() bool {
	if s == nil {
		return true
	}
	for _, t := range s.Texts() {
		if t != "" {
			return false
		}
	}
	return true
}
