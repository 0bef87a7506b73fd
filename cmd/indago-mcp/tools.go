package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createKeywordResearchTool returns the keyword_research tool definition
func createKeywordResearchTool() mcp.Tool {
	return mcp.NewTool("keyword_research",
		mcp.WithDescription("Run full keyword research for a website: scan its pages, extract seed topics, enrich them with search volume and CPC data, and return ranked topic clusters as markdown. Takes up to a few minutes."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Website URL to research (absolute, http or https)"),
		),
		mcp.WithString("country",
			mcp.Required(),
			mcp.Description("Geo target code of the market, e.g. 2756 for Switzerland (see list_countries)"),
		),
		mcp.WithString("language",
			mcp.Description("Language code like en or de (default: the market's language)"),
		),
		mcp.WithNumber("max_pages",
			mcp.Description("Pages to scan (default from configuration, values above 100 are clamped)"),
		),
	)
}

// createKeywordMetricsTool returns the keyword_metrics tool definition
func createKeywordMetricsTool() mcp.Tool {
	return mcp.NewTool("keyword_metrics",
		mcp.WithDescription("Look up monthly search volume, competition, and CPC for specific keywords in one market"),
		mcp.WithArray("keywords",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description("Keywords or phrases to look up"),
		),
		mcp.WithString("country",
			mcp.Required(),
			mcp.Description("Geo target code of the market, e.g. 2840 for the United States (see list_countries)"),
		),
		mcp.WithString("language",
			mcp.Description("Language code like en or de (default: the market's language)"),
		),
	)
}

// createListCountriesTool returns the list_countries tool definition
func createListCountriesTool() mcp.Tool {
	return mcp.NewTool("list_countries",
		mcp.WithDescription("List the supported target markets with their geo target codes, plus the supported language codes"),
	)
}
