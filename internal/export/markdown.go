package export

import (
	"fmt"
	"strings"

	"github.com/ternarybob/indago/internal/models"
)

// MarkdownReport renders a completed result as a markdown document: a run
// summary followed by one section per ranked cluster with its aggregates, AI
// notes, and keyword table. The PDF export and the MCP research tool both
// serve this report.
func MarkdownReport(result *models.ResearchResult) string {
	var sb strings.Builder

	sb.WriteString("# Keyword Research Report\n\n")
	sb.WriteString(fmt.Sprintf("**Website:** %s\n\n", result.URL))
	sb.WriteString(fmt.Sprintf("**Country:** %s | **Language:** %s | **Scrape strategy:** %s\n\n",
		result.Country, result.Language, result.Strategy))
	sb.WriteString(fmt.Sprintf("%d topic clusters, %d keywords, %d pages scanned. Generated %s.\n\n",
		result.TotalClusters, result.TotalKeywords, result.ScrapedPages,
		result.GeneratedAt.Format("2006-01-02 15:04 MST")))

	if len(result.Clusters) == 0 {
		sb.WriteString("No clusters survived relevance filtering for this site.\n")
		return sb.String()
	}

	for _, cluster := range result.Clusters {
		sb.WriteString("---\n\n")
		writeClusterSection(&sb, cluster)
	}

	return sb.String()
}

func writeClusterSection(sb *strings.Builder, cluster models.Cluster) {
	sb.WriteString(fmt.Sprintf("## %d. %s\n\n", cluster.Rank, cluster.PillarTopic))

	sb.WriteString(fmt.Sprintf("**Value score:** %.0f | **Total volume:** %d | **Competition:** %s",
		cluster.ClusterValueScore, cluster.TotalSearchVolume, cluster.AvgCompetition))
	if cluster.AIPriority {
		sb.WriteString(" | **Priority**")
	}
	sb.WriteString("\n\n")

	if cluster.AIDescription != "" {
		sb.WriteString(cluster.AIDescription)
		sb.WriteString("\n\n")
	}
	if cluster.AIContentStrategy != "" {
		sb.WriteString(fmt.Sprintf("**Content strategy:** %s\n\n", cluster.AIContentStrategy))
	}

	sb.WriteString("| Keyword | Monthly Searches | Competition | CPC Low | CPC High |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, keyword := range cluster.Keywords {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %.2f | %.2f |\n",
			escapePipes(keyword.Text), keyword.SearchVolume, keyword.Competition,
			keyword.CPCLow, keyword.CPCHigh))
	}
	sb.WriteString("\n")
}

// escapePipes keeps free-text cells from breaking table syntax.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
