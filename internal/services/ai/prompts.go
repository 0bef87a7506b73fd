package ai

import (
	"fmt"
	"strings"

	"github.com/ternarybob/indago/internal/models"
)

// promptKeywordCap bounds how many keywords a cluster contributes to a
// prompt listing.
const promptKeywordCap = 15

// System prompts frame each request kind. Providers are told to answer with
// bare JSON; the parser still tolerates code fences from the ones that
// ignore that.
const (
	seedSystemPrompt    = "You are a keyword research assistant for search advertising campaigns. Respond with valid JSON only, no markdown and no explanations."
	clusterSystemPrompt = "You are a keyword clustering analyst for search advertising campaigns. Respond with valid JSON only, no markdown and no explanations."
)

const seedPromptTemplate = `Generate up to %d seed keywords for a search advertising campaign promoting this website.

Website content (markdown excerpt):
%s

Requirements:
- Keywords must be in language %q.
- Each keyword is a short marketing phrase of 1-3 words.
- Order keywords from most to least relevant.
- Cover the site's products, services, and topics; skip navigation terms.

Return ONLY a JSON array of strings:
["keyword one", "keyword two"]`

const regroupPromptTemplate = `Review these keyword clusters for a search advertising campaign. The campaign holds %d keywords overall.

%sClusters, one per line as index: pillar topic, top keywords, size:
%s
Tasks:
- Suggest a clearer pillar topic name in language %q for any cluster whose name does not describe its keywords.
- List the indices of the clusters with the highest commercial priority.

Return ONLY valid JSON:
{
  "renames": {"0": "better pillar name"},
  "priorities": [0, 2]
}`

const scrutinyPromptTemplate = `Audit the keyword-to-cluster assignments for a search advertising campaign covering %d keywords.

%sClusters, one per line as id, pillar topic, keywords, size:
%s
Tasks:
- Move keywords that fit another cluster better (reassignments).
- Merge clusters that cover the same topic (the source folds into the target).
- Rename pillar topics in language %q where they misdescribe their cluster.
- Leave well-formed clusters alone and return empty lists when nothing needs fixing.

Return ONLY valid JSON:
{
  "reassignments": [{"keyword": "text", "fromCluster": "id", "toCluster": "id"}],
  "merges": [{"sourceId": "id", "targetId": "id"}],
  "renames": {"id": "better pillar name"}
}`

const enhancePromptTemplate = `Describe this keyword cluster for a search advertising content plan.

%sPillar topic: %s
Keywords: %s
Total monthly searches: %d
Competition: %s

Respond in language %q. Return ONLY valid JSON:
{
  "pillarTopic": "improved short name, or the current one",
  "description": "2-3 sentences on what this cluster covers and why it matters for the site",
  "contentStrategy": "2-3 sentences on the content to create to win these searches"
}`

func buildSeedPrompt(scrape *models.ScrapeResult, language string, max int) string {
	return fmt.Sprintf(seedPromptTemplate, max, scrapeExcerpt(scrape), promptLanguage(language))
}

func buildRegroupPrompt(clusters []models.Cluster, siteContext *models.SiteContext, keywords []models.Keyword, language string) string {
	return fmt.Sprintf(regroupPromptTemplate,
		len(keywords),
		contextBlock(siteContext),
		clusterDigest(clusters, false),
		promptLanguage(language))
}

func buildScrutinyPrompt(clusters []models.Cluster, keywords []models.Keyword, siteContext *models.SiteContext, language string) string {
	return fmt.Sprintf(scrutinyPromptTemplate,
		len(keywords),
		contextBlock(siteContext),
		clusterDigest(clusters, true),
		promptLanguage(language))
}

func buildEnhancePrompt(cluster *models.Cluster, siteContext *models.SiteContext, language string) string {
	return fmt.Sprintf(enhancePromptTemplate,
		contextBlock(siteContext),
		cluster.PillarTopic,
		strings.Join(topKeywordTexts(cluster, promptKeywordCap), ", "),
		cluster.TotalSearchVolume,
		cluster.AvgCompetition,
		promptLanguage(language))
}

// clusterDigest lists the cluster set one line per cluster. withIDs switches
// between index-keyed listings (regroup advice addresses clusters by
// position) and id-keyed listings (scrutiny advice addresses them by id).
func clusterDigest(clusters []models.Cluster, withIDs bool) string {
	var b strings.Builder
	for i := range clusters {
		c := &clusters[i]
		keywords := strings.Join(topKeywordTexts(c, promptKeywordCap), ", ")
		if withIDs {
			fmt.Fprintf(&b, "- id=%s pillar=%q keywords: %s (%d keywords, %d searches/month)\n",
				c.ID, c.PillarTopic, keywords, len(c.Keywords), c.TotalSearchVolume)
		} else {
			fmt.Fprintf(&b, "%d: pillar=%q keywords: %s (%d keywords, %d searches/month)\n",
				i, c.PillarTopic, keywords, len(c.Keywords), c.TotalSearchVolume)
		}
	}
	return b.String()
}

// contextBlock renders the site context as a prompt preamble, empty when
// there is nothing to say. A non-empty block ends with a blank line.
func contextBlock(siteContext *models.SiteContext) string {
	summary := contextSummary(siteContext)
	if summary == "" {
		return ""
	}
	return fmt.Sprintf("Website: %s\n\n", summary)
}

func topKeywordTexts(c *models.Cluster, n int) []string {
	top := c.TopKeywords(n)
	texts := make([]string, len(top))
	for i, k := range top {
		texts[i] = k.Text
	}
	return texts
}

func promptLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return "en"
	}
	return language
}
