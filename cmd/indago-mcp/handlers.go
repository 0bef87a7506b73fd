package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/catalog"
	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// handleKeywordResearch implements the keyword_research tool. The pipeline
// runs synchronously inside the tool call; the caller's context cancels it.
func handleKeywordResearch(service interfaces.ResearchService, config *common.Config, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse url parameter (required)
		rawURL, err := request.RequireString("url")
		if err != nil || rawURL == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: url parameter is required"),
				},
			}, nil
		}
		rawURL = strings.TrimSpace(rawURL)
		target, err := url.Parse(rawURL)
		if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Hostname() == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Error: %q is not an absolute http or https URL", rawURL)),
				},
			}, nil
		}

		// Parse country parameter (required)
		country, err := request.RequireString("country")
		if err != nil || country == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: country parameter is required"),
				},
			}, nil
		}
		if _, ok := catalog.CountryByCode(country); !ok {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Error: unknown country code %q, use list_countries to see supported markets", country)),
				},
			}, nil
		}

		// Parse language (default: the market's language)
		language := request.GetString("language", "")
		if language != "" && !catalog.IsSupportedLanguage(language) {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Error: unsupported language %q, use list_countries to see supported codes", language)),
				},
			}, nil
		}

		options := models.ResearchOptions{
			MaxPages: request.GetInt("max_pages", 0),
		}
		options.Normalize(config.Research.MaxPages)

		resolved := catalog.ResolveLanguage(language, country)
		job := models.NewResearchJob(rawURL, country, language, resolved, options, "mcp")

		// Execute the pipeline
		result, err := service.Run(ctx, job)
		if err != nil {
			logger.Warn().Err(err).Str("url", rawURL).Msg("Research run failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Research failed during %s: %s", job.Step, job.Error)),
				},
			}, nil
		}

		// Format results as markdown
		markdown := formatResearchReport(job, result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleKeywordMetrics implements the keyword_metrics tool
func handleKeywordMetrics(metricsService interfaces.MetricsService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse keywords parameter (required)
		keywords := request.GetStringSlice("keywords", nil)
		if len(keywords) == 0 {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: keywords parameter is required"),
				},
			}, nil
		}

		// Parse country parameter (required)
		country, err := request.RequireString("country")
		if err != nil || country == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: country parameter is required"),
				},
			}, nil
		}
		market, ok := catalog.CountryByCode(country)
		if !ok {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Error: unknown country code %q, use list_countries to see supported markets", country)),
				},
			}, nil
		}

		// Parse language (default: the market's language)
		language := request.GetString("language", "")
		if language != "" && !catalog.IsSupportedLanguage(language) {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Error: unsupported language %q, use list_countries to see supported codes", language)),
				},
			}, nil
		}
		resolved := catalog.ResolveLanguage(language, country)

		// Fetch metrics
		results, err := metricsService.GetKeywordMetrics(ctx, keywords, country, resolved)
		if err != nil {
			logger.Error().Err(err).Str("country", country).Msg("Metrics lookup failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Metrics lookup failed: %v", err)),
				},
			}, nil
		}

		// Format results as markdown
		markdown := formatKeywordMetrics(keywords, results, market, resolved)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleListCountries implements the list_countries tool
func handleListCountries() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		markdown := formatCountries(catalog.Countries(), catalog.Languages())
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}
