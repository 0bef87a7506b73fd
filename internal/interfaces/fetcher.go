package interfaces

import "context"

// FetchResult is the raw outcome of fetching one URL.
type FetchResult struct {
	HTML       string
	FinalURL   string
	StatusCode int
}

// FetchStrategy fetches a single page. A strategy owns its resources
// (browser context, HTTP connections) and releases them on every exit path.
type FetchStrategy interface {
	// Name returns the strategy tag ("browser" or "http").
	Name() string

	// Fetch retrieves the page and returns raw HTML with the final URL
	// after redirects. HTTP status >= 400 is an error.
	Fetch(ctx context.Context, url string) (*FetchResult, error)

	// Available reports whether the strategy can run in this environment.
	Available() bool
}

// Fetcher coordinates strategies with retries and fallback ordering.
type Fetcher interface {
	// Fetch tries the selected strategy ("browser", "http", or "auto") up
	// to attempts times each. With "auto" the browser strategy is exhausted
	// before falling back to plain HTTP. The returned strategy tag names
	// the strategy that produced the page.
	Fetch(ctx context.Context, url, strategy string, attempts int) (*FetchResult, string, error)
}
