package ai

import (
	"fmt"
	"strings"

	"github.com/ternarybob/indago/internal/models"
)

// narrativeKeywordCap bounds how many keywords the generated copy cites.
const narrativeKeywordCap = 4

// FillNarrative writes a deterministic description and content strategy onto
// the cluster when the AI left them empty. The text is assembled from the
// pillar topic, the top keywords by volume, and the site context, so the
// same cluster always yields the same copy.
func FillNarrative(c *models.Cluster, siteContext *models.SiteContext) {
	if c == nil || len(c.Keywords) == 0 {
		return
	}
	if c.AIDescription == "" {
		c.AIDescription = narrativeDescription(c, siteContext)
	}
	if c.AIContentStrategy == "" {
		c.AIContentStrategy = narrativeStrategy(c)
	}
}

func narrativeDescription(c *models.Cluster, siteContext *models.SiteContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The %q topic groups %d keywords with a combined monthly search volume of %d.",
		c.PillarTopic, len(c.Keywords), c.TotalSearchVolume)

	if tops := topKeywordTexts(c, narrativeKeywordCap); len(tops) > 0 {
		fmt.Fprintf(&b, " Leading searches: %s.", strings.Join(tops, ", "))
	}
	if summary := contextSummary(siteContext); summary != "" {
		fmt.Fprintf(&b, " Relevant to %s.", summary)
	}
	return b.String()
}

func narrativeStrategy(c *models.Cluster) string {
	tops := topKeywordTexts(c, narrativeKeywordCap)
	primary := c.PillarTopic
	if primary == "" && len(tops) > 0 {
		primary = tops[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a pillar page targeting %q", primary)
	if len(tops) > 1 {
		fmt.Fprintf(&b, " with supporting articles for %s", strings.Join(tops[1:], ", "))
	}
	b.WriteString(".")

	switch c.AvgCompetition {
	case models.CompetitionHigh:
		b.WriteString(" Competition is high; favor long-tail variants and specific intent first.")
	case models.CompetitionLow:
		b.WriteString(" Competition is low; broad coverage of the head terms can rank quickly.")
	default:
		b.WriteString(" Competition is moderate; balance head terms with long-tail support pages.")
	}
	return b.String()
}
