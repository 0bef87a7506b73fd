package interfaces

import (
	"context"

	"github.com/ternarybob/indago/internal/models"
)

// Extractor turns raw HTML into structured page content.
type Extractor interface {
	Extract(html, url string) (*models.PageContent, error)
}

// ScrapeOptions bound a single crawl.
type ScrapeOptions struct {
	MaxPages    int
	FollowLinks bool
	Strategy    string
	Attempts    int
}

// ScraperService crawls same-origin pages starting from a seed URL.
type ScraperService interface {
	// Scrape crawls up to opts.MaxPages pages and returns their extracted
	// content in visit order. It fails when no page yields any words.
	Scrape(ctx context.Context, startURL string, opts ScrapeOptions) (*models.ScrapeResult, error)

	// Probe checks that the start URL answers at all before a crawl is
	// attempted.
	Probe(ctx context.Context, url string) error
}
