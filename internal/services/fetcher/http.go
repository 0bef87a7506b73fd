package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
	"golang.org/x/time/rate"
)

const (
	maxRedirects  = 5
	maxDocumentMB = 10
)

// HTTPStrategy fetches pages with a plain HTTP GET. No JavaScript runs, so
// it only sees server-rendered markup, but it needs no browser and is the
// fallback when the pool is down.
type HTTPStrategy struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    arbor.ILogger
}

// NewHTTPStrategy creates the plain-HTTP fetch strategy. requestsPerSecond
// paces outbound requests across all jobs sharing the strategy.
func NewHTTPStrategy(timeout time.Duration, requestsPerSecond float64, userAgent string, logger arbor.ILogger) *HTTPStrategy {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}

	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	return &HTTPStrategy{
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		userAgent: userAgent,
		logger:    logger,
	}
}

// Name identifies the strategy in results and logs
func (s *HTTPStrategy) Name() string {
	return "http"
}

// Available always holds; plain HTTP needs no external runtime
func (s *HTTPStrategy) Available() bool {
	return true
}

// Fetch performs a rate-limited GET following up to 5 redirects.
// Responses with status >= 400 or a non-HTML content type are errors.
func (s *HTTPStrategy) Fetch(ctx context.Context, url string) (*interfaces.FetchResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,de;q=0.8")
	// Accept-Encoding is left to the transport so gzip is decoded transparently

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch of %s returned status %d", url, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") && !strings.HasPrefix(contentType, "text/") {
		return nil, fmt.Errorf("unsupported content type %q for %s", contentType, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentMB<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &interfaces.FetchResult{
		HTML:       string(body),
		FinalURL:   finalURL,
		StatusCode: resp.StatusCode,
	}, nil
}
