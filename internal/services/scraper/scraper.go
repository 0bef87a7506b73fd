// -----------------------------------------------------------------------
// Scraper - Same-origin crawl producing structured page content
// -----------------------------------------------------------------------

package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	gocache "github.com/patrickmn/go-cache"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

const probeTimeout = 10 * time.Second

// Service crawls a site starting from one URL, staying on the same host.
// Completed scrapes are cached briefly so repeated research runs against
// the same site skip the crawl.
type Service struct {
	fetcher   interfaces.Fetcher
	extractor interfaces.Extractor
	cache     *gocache.Cache
	probe     *http.Client
	userAgent string
	logger    arbor.ILogger
}

// NewService creates the scraper. cacheTTL <= 0 disables the scrape cache.
func NewService(fetcher interfaces.Fetcher, extractor interfaces.Extractor, cacheTTL time.Duration, userAgent string, logger arbor.ILogger) interfaces.ScraperService {
	var c *gocache.Cache
	if cacheTTL > 0 {
		c = gocache.New(cacheTTL, 10*time.Minute)
	}

	return &Service{
		fetcher:   fetcher,
		extractor: extractor,
		cache:     c,
		probe: &http.Client{
			Timeout: probeTimeout,
		},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Scrape crawls up to opts.MaxPages same-origin pages breadth-first and
// returns their extracted content in visit order. Links are harvested from
// the first successful page only.
func (s *Service) Scrape(ctx context.Context, startURL string, opts interfaces.ScrapeOptions) (*models.ScrapeResult, error) {
	start := CanonicalURL(startURL)
	cacheKey := s.scrapeCacheKey(start, opts)

	if s.cache != nil {
		if cached, found := s.cache.Get(cacheKey); found {
			s.logger.Debug().Str("url", start).Msg("Scrape cache hit")
			return cached.(*models.ScrapeResult), nil
		}
	}

	parsedStart, err := url.Parse(start)
	if err != nil {
		return nil, models.NewStageError(models.StepScanning, models.ErrInvalidInput, "invalid start URL %q: %v", startURL, err)
	}
	startHost := parsedStart.Hostname()

	visited := make(map[string]bool)
	frontier := []string{start}

	var pages []models.PageContent
	var usedStrategy string
	harvested := false

	for len(visited) < opts.MaxPages && len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := frontier[0]
		frontier = frontier[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		result, strategy, err := s.fetcher.Fetch(ctx, current, opts.Strategy, opts.Attempts)
		if err != nil {
			s.logger.Warn().Str("url", current).Err(err).Msg("Page fetch failed, skipping")
			continue
		}

		page, err := s.extractor.Extract(result.HTML, result.FinalURL)
		if err != nil {
			s.logger.Warn().Str("url", current).Err(err).Msg("Page extraction failed, skipping")
			continue
		}
		if page.WordCount == 0 {
			s.logger.Debug().Str("url", current).Msg("Page has no extractable content, skipping")
			continue
		}

		if len(pages) == 0 {
			usedStrategy = strategy
		}
		pages = append(pages, *page)

		if !harvested && opts.FollowLinks {
			harvested = true
			links := s.harvestLinks(result.HTML, current, startHost, opts.MaxPages-1, visited, frontier)
			frontier = append(frontier, links...)
			s.logger.Debug().
				Str("url", current).
				Int("links_queued", len(links)).
				Msg("Harvested same-origin links from first page")
		}
	}

	if len(pages) == 0 {
		return nil, models.NewStageError(models.StepScanning, models.ErrUnreachable, "all scraping strategies failed for %s", startURL)
	}

	totalWords := 0
	for _, p := range pages {
		totalWords += p.WordCount
	}

	scrape := &models.ScrapeResult{
		Pages:      pages,
		TotalWords: totalWords,
		Strategy:   usedStrategy,
		ScrapedAt:  time.Now().UTC(),
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, scrape, gocache.DefaultExpiration)
	}

	s.logger.Info().
		Str("url", start).
		Int("pages", len(pages)).
		Int("total_words", totalWords).
		Str("strategy", usedStrategy).
		Msg("Scrape completed")

	return scrape, nil
}

// Probe checks that the target responds to HTTP at all. Servers that reject
// HEAD get a second chance via GET. Any response below 500 counts as
// reachable; transport errors do not.
func (s *Service) Probe(ctx context.Context, rawURL string) error {
	status, err := s.probeRequest(ctx, http.MethodHead, rawURL)
	if err != nil || status == http.StatusMethodNotAllowed {
		status, err = s.probeRequest(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		return models.NewStageError(models.StepScanning, models.ErrUnreachable, "%s is not reachable: %v", rawURL, err)
	}
	if status >= 500 {
		return models.NewStageError(models.StepScanning, models.ErrUnreachable, "%s returned server error %d", rawURL, status)
	}
	return nil
}

func (s *Service) probeRequest(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.probe.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// harvestLinks extracts same-origin anchor targets from a page, canonicalized
// and deduplicated against everything already seen or queued
func (s *Service) harvestLinks(html, pageURL, startHost string, limit int, visited map[string]bool, frontier []string) []string {
	if limit <= 0 {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.logger.Warn().Str("url", pageURL).Err(err).Msg("Failed to parse page for link harvesting")
		return nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	queued := make(map[string]bool, len(frontier))
	for _, f := range frontier {
		queued[f] = true
	}

	var links []string
	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		if len(links) >= limit {
			return
		}

		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Hostname() != startHost {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}

		canonical := CanonicalURL(resolved.String())
		if visited[canonical] || queued[canonical] {
			return
		}
		queued[canonical] = true
		links = append(links, canonical)
	})

	return links
}

// scrapeCacheKey includes everything that changes the crawl output
func (s *Service) scrapeCacheKey(canonicalStart string, opts interfaces.ScrapeOptions) string {
	return fmt.Sprintf("%s|%d|%s|%t", canonicalStart, opts.MaxPages, opts.Strategy, opts.FollowLinks)
}

// CanonicalURL normalizes a URL for visited-set comparison: the fragment is
// dropped and a trailing slash trimmed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}
