package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
)

// blockedResourcePatterns keeps image/font/style traffic out of headless
// fetches; only the document and scripts matter for text extraction.
var blockedResourcePatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.webp", "*.ico",
	"*.woff", "*.woff2", "*.ttf", "*.otf", "*.eot", "*.css",
}

// BrowserStrategy fetches pages through the shared headless browser pool,
// executing JavaScript before capturing the rendered HTML.
type BrowserStrategy struct {
	pool        *BrowserPool
	navTimeout  time.Duration
	bodyTimeout time.Duration
	logger      arbor.ILogger
}

// NewBrowserStrategy creates a browser-backed fetch strategy
func NewBrowserStrategy(pool *BrowserPool, navTimeout, bodyTimeout time.Duration, logger arbor.ILogger) *BrowserStrategy {
	return &BrowserStrategy{
		pool:        pool,
		navTimeout:  navTimeout,
		bodyTimeout: bodyTimeout,
		logger:      logger,
	}
}

// Name identifies the strategy in results and logs
func (s *BrowserStrategy) Name() string {
	return "browser"
}

// Available reports whether the browser pool launched successfully
func (s *BrowserStrategy) Available() bool {
	return s.pool != nil && s.pool.IsInitialized()
}

// Fetch renders the page in a fresh tab and returns the final HTML.
// Document responses with status >= 400 abort the fetch.
func (s *BrowserStrategy) Fetch(ctx context.Context, url string) (*interfaces.FetchResult, error) {
	browserCtx, err := s.pool.Get()
	if err != nil {
		return nil, fmt.Errorf("browser unavailable: %w", err)
	}

	// Fresh tab per fetch; the pooled browser process is shared
	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()

	navCtx, navCancel := context.WithTimeout(tabCtx, s.navTimeout)
	defer navCancel()

	// Watch for premature caller cancellation
	stop := context.AfterFunc(ctx, navCancel)
	defer stop()

	var (
		mu         sync.Mutex
		statusCode int
		statusURL  string
	)
	chromedp.ListenTarget(navCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			if resp.Type == network.ResourceTypeDocument {
				mu.Lock()
				statusCode = int(resp.Response.Status)
				statusURL = resp.Response.URL
				mu.Unlock()
			}
		}
	})

	err = chromedp.Run(navCtx,
		network.Enable(),
		network.SetBlockedURLs(blockedResourcePatterns),
		chromedp.Navigate(url),
	)
	if err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	// Give client-side rendering a bounded window to attach the body
	bodyCtx, bodyCancel := context.WithTimeout(navCtx, s.bodyTimeout)
	if err := chromedp.Run(bodyCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		s.logger.Debug().Str("url", url).Err(err).Msg("Body selector wait expired, capturing current DOM")
	}
	bodyCancel()

	mu.Lock()
	code := statusCode
	respURL := statusURL
	mu.Unlock()

	if code >= 400 {
		return nil, fmt.Errorf("browser fetch of %s returned status %d", url, code)
	}

	var html, finalURL string
	err = chromedp.Run(navCtx,
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture rendered HTML: %w", err)
	}

	if finalURL == "" || finalURL == "about:blank" {
		finalURL = respURL
	}
	if finalURL == "" {
		finalURL = url
	}

	return &interfaces.FetchResult{
		HTML:       html,
		FinalURL:   finalURL,
		StatusCode: code,
	}, nil
}
