package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// defaultSeedMax bounds seed generation when the caller passes no cap.
const defaultSeedMax = 100

// Enhancer drives the generative requests of the pipeline. Every method
// returns an error instead of partial data when the response does not parse;
// callers downgrade those errors to job warnings and keep their current
// state.
type Enhancer struct {
	provider interfaces.AIService
	logger   arbor.ILogger
}

var _ interfaces.AIEnhancer = (*Enhancer)(nil)

// NewEnhancer wraps a completion provider. The provider may be nil or
// unavailable; every request then fails fast so deterministic fallbacks run.
func NewEnhancer(provider interfaces.AIService, logger arbor.ILogger) *Enhancer {
	return &Enhancer{
		provider: provider,
		logger:   logger.WithPrefix("ai"),
	}
}

// Available reports whether a usable provider is attached.
func (e *Enhancer) Available() bool {
	return e.provider != nil && e.provider.Available()
}

func (e *Enhancer) complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if !e.Available() {
		return "", models.ErrAIUnavailable
	}
	return e.provider.Complete(ctx, systemPrompt, prompt)
}

// GenerateSeedKeywords asks for up to max short keyword phrases in the
// target language, derived from the scraped content.
func (e *Enhancer) GenerateSeedKeywords(ctx context.Context, scrape *models.ScrapeResult, language string, max int) ([]string, error) {
	if scrape == nil || len(scrape.Pages) == 0 {
		return nil, fmt.Errorf("no scraped content to prompt with")
	}
	if max <= 0 {
		max = defaultSeedMax
	}

	response, err := e.complete(ctx, seedSystemPrompt, buildSeedPrompt(scrape, language, max))
	if err != nil {
		return nil, err
	}

	var seeds []string
	if err := decodeResponse(response, &seeds); err != nil {
		return nil, fmt.Errorf("seed response: %w", err)
	}
	if len(seeds) > max {
		seeds = seeds[:max]
	}

	e.logger.Debug().
		Int("count", len(seeds)).
		Str("provider", e.provider.ProviderName()).
		Msg("AI seed keywords parsed")

	return seeds, nil
}

// regroupResponse is the provider's regrouping payload. JSON object keys are
// strings, so rename indices arrive as strings and are converted.
type regroupResponse struct {
	Renames    map[string]string `json:"renames"`
	Priorities []int             `json:"priorities"`
}

// RegroupSuggestions asks for cluster renames and priority picks. Indices
// outside the cluster set and blank names are dropped here so the advice can
// be applied without further validation.
func (e *Enhancer) RegroupSuggestions(ctx context.Context, clusters []models.Cluster, siteContext *models.SiteContext, keywords []models.Keyword, language string) (*interfaces.RegroupResult, error) {
	if len(clusters) == 0 {
		return &interfaces.RegroupResult{Renames: map[int]string{}}, nil
	}

	response, err := e.complete(ctx, clusterSystemPrompt, buildRegroupPrompt(clusters, siteContext, keywords, language))
	if err != nil {
		return nil, err
	}

	var parsed regroupResponse
	if err := decodeResponse(response, &parsed); err != nil {
		return nil, fmt.Errorf("regroup response: %w", err)
	}

	result := &interfaces.RegroupResult{Renames: make(map[int]string, len(parsed.Renames))}
	for key, name := range parsed.Renames {
		idx, convErr := strconv.Atoi(strings.TrimSpace(key))
		if convErr != nil || idx < 0 || idx >= len(clusters) {
			continue
		}
		if name = strings.TrimSpace(name); name != "" {
			result.Renames[idx] = name
		}
	}
	for _, idx := range parsed.Priorities {
		if idx >= 0 && idx < len(clusters) {
			result.Priorities = append(result.Priorities, idx)
		}
	}

	e.logger.Debug().
		Int("renames", len(result.Renames)).
		Int("priorities", len(result.Priorities)).
		Msg("Cluster regrouping advice parsed")

	return result, nil
}

type scrutinyResponse struct {
	Reassignments []struct {
		Keyword     string `json:"keyword"`
		FromCluster string `json:"fromCluster"`
		ToCluster   string `json:"toCluster"`
	} `json:"reassignments"`
	Merges []struct {
		SourceID string `json:"sourceId"`
		TargetID string `json:"targetId"`
	} `json:"merges"`
	Renames map[string]string `json:"renames"`
}

// Scrutinize audits keyword ownership across clusters. Entries referring to
// unknown cluster ids are dropped; self-merges are dropped.
func (e *Enhancer) Scrutinize(ctx context.Context, clusters []models.Cluster, keywords []models.Keyword, siteContext *models.SiteContext, language string) (*interfaces.ScrutinyResult, error) {
	if len(clusters) == 0 {
		return &interfaces.ScrutinyResult{Renames: map[string]string{}}, nil
	}

	response, err := e.complete(ctx, clusterSystemPrompt, buildScrutinyPrompt(clusters, keywords, siteContext, language))
	if err != nil {
		return nil, err
	}

	var parsed scrutinyResponse
	if err := decodeResponse(response, &parsed); err != nil {
		return nil, fmt.Errorf("scrutiny response: %w", err)
	}

	known := make(map[string]struct{}, len(clusters))
	for i := range clusters {
		known[clusters[i].ID] = struct{}{}
	}

	result := &interfaces.ScrutinyResult{Renames: make(map[string]string, len(parsed.Renames))}
	for _, move := range parsed.Reassignments {
		keyword := models.CanonicalKeywordText(move.Keyword)
		if keyword == "" {
			continue
		}
		if _, ok := known[move.ToCluster]; !ok {
			continue
		}
		result.Reassignments = append(result.Reassignments, interfaces.KeywordReassignment{
			Keyword:     keyword,
			FromCluster: move.FromCluster,
			ToCluster:   move.ToCluster,
		})
	}
	for _, merge := range parsed.Merges {
		if merge.SourceID == merge.TargetID {
			continue
		}
		if _, ok := known[merge.SourceID]; !ok {
			continue
		}
		if _, ok := known[merge.TargetID]; !ok {
			continue
		}
		result.Merges = append(result.Merges, interfaces.MergeSuggestion{
			SourceID: merge.SourceID,
			TargetID: merge.TargetID,
		})
	}
	for id, name := range parsed.Renames {
		if _, ok := known[id]; !ok {
			continue
		}
		if name = strings.TrimSpace(name); name != "" {
			result.Renames[id] = name
		}
	}

	e.logger.Debug().
		Int("reassignments", len(result.Reassignments)).
		Int("merges", len(result.Merges)).
		Int("renames", len(result.Renames)).
		Msg("Cluster scrutiny parsed")

	return result, nil
}

type enhanceResponse struct {
	PillarTopic     string `json:"pillarTopic"`
	Description     string `json:"description"`
	ContentStrategy string `json:"contentStrategy"`
}

// EnhanceCluster names and describes a single cluster.
func (e *Enhancer) EnhanceCluster(ctx context.Context, cluster *models.Cluster, siteContext *models.SiteContext, language string) (*interfaces.ClusterEnhancement, error) {
	if cluster == nil || len(cluster.Keywords) == 0 {
		return nil, fmt.Errorf("cluster has no keywords to describe")
	}

	response, err := e.complete(ctx, clusterSystemPrompt, buildEnhancePrompt(cluster, siteContext, language))
	if err != nil {
		return nil, err
	}

	var parsed enhanceResponse
	if err := decodeResponse(response, &parsed); err != nil {
		return nil, fmt.Errorf("enhancement response: %w", err)
	}

	return &interfaces.ClusterEnhancement{
		PillarTopic:     strings.TrimSpace(parsed.PillarTopic),
		Description:     strings.TrimSpace(parsed.Description),
		ContentStrategy: strings.TrimSpace(parsed.ContentStrategy),
	}, nil
}
