package main

import (
	"fmt"
	"strings"

	"github.com/ternarybob/indago/internal/export"
	"github.com/ternarybob/indago/internal/models"
)

// formatResearchReport renders the full cluster report plus any warnings
// collected during the run
func formatResearchReport(job *models.ResearchJob, result *models.ResearchResult) string {
	var sb strings.Builder
	sb.WriteString(export.MarkdownReport(result))

	if len(job.Warnings) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		for _, warning := range job.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", warning))
		}
	}

	return sb.String()
}

// formatKeywordMetrics formats a metrics lookup as a markdown table
func formatKeywordMetrics(requested []string, keywords []models.Keyword, market models.Country, language string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Keyword Metrics for %s (%d of %d requested)\n\n", market.Name, len(keywords), len(requested)))
	sb.WriteString(fmt.Sprintf("**Language:** %s | **Currency:** %s\n\n", language, market.Currency))

	if len(keywords) == 0 {
		sb.WriteString("No metrics returned. The provider found no search volume for these keywords in this market.\n")
		return sb.String()
	}

	sb.WriteString("| Keyword | Monthly Searches | Competition | CPC Low | CPC High |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, kw := range keywords {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %.2f | %.2f |\n",
			strings.ReplaceAll(kw.Text, "|", "\\|"), kw.SearchVolume, kw.Competition, kw.CPCLow, kw.CPCHigh))
	}

	if len(keywords) < len(requested) {
		sb.WriteString("\nKeywords below the configured minimum search volume are omitted.\n")
	}

	return sb.String()
}

// formatCountries formats the market and language catalog as markdown
func formatCountries(countries []models.Country, languages []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Supported Markets (%d)\n\n", len(countries)))

	sb.WriteString("| Market | Code | ISO | Default Language | Currency |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, c := range countries {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			c.Name, c.Code, c.ISO, c.DefaultLanguage, c.Currency))
	}

	sb.WriteString("\n### Languages\n\n")
	sb.WriteString(strings.Join(languages, ", "))
	sb.WriteString("\n")

	return sb.String()
}
