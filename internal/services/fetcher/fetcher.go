// -----------------------------------------------------------------------
// Fetcher - Strategy selection and retry around page fetching
// -----------------------------------------------------------------------

package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// Service implements interfaces.Fetcher. It owns strategy selection
// (browser first, plain HTTP as fallback) and per-strategy retries.
type Service struct {
	browser    interfaces.FetchStrategy
	plain      interfaces.FetchStrategy
	retryDelay time.Duration
	attempts   int
	logger     arbor.ILogger
}

// NewService wires the two fetch strategies into a fetcher. retryDelay
// is the base delay; attempt n waits n times that before the next try.
func NewService(browser, plain interfaces.FetchStrategy, retryDelay time.Duration, attempts int, logger arbor.ILogger) interfaces.Fetcher {
	if attempts <= 0 {
		attempts = 3
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &Service{
		browser:    browser,
		plain:      plain,
		retryDelay: retryDelay,
		attempts:   attempts,
		logger:     logger,
	}
}

// Fetch retrieves a page with the requested strategy. With "auto" the
// browser strategy is tried first and plain HTTP picks up its failures.
// Returns the result and the name of the strategy that produced it.
func (s *Service) Fetch(ctx context.Context, url string, strategy string, attempts int) (*interfaces.FetchResult, string, error) {
	if attempts <= 0 {
		attempts = s.attempts
	}

	var chain []interfaces.FetchStrategy
	switch strategy {
	case models.StrategyBrowser:
		chain = []interfaces.FetchStrategy{s.browser}
	case models.StrategyHTTP:
		chain = []interfaces.FetchStrategy{s.plain}
	default:
		chain = []interfaces.FetchStrategy{s.browser, s.plain}
	}

	var lastErr error
	for _, st := range chain {
		if st == nil {
			continue
		}
		if !st.Available() {
			s.logger.Debug().
				Str("strategy", st.Name()).
				Str("url", url).
				Msg("Fetch strategy unavailable, skipping")
			continue
		}

		result, err := s.fetchWithRetry(ctx, st, url, attempts)
		if err == nil {
			return result, st.Name(), nil
		}
		lastErr = err

		s.logger.Warn().
			Str("strategy", st.Name()).
			Str("url", url).
			Int("attempts", attempts).
			Err(err).
			Msg("Fetch strategy exhausted")
	}

	if lastErr == nil {
		return nil, "", fmt.Errorf("no fetch strategy available for %s", url)
	}
	return nil, "", lastErr
}

// fetchWithRetry runs one strategy up to attempts times with a linearly
// growing delay between tries
func (s *Service) fetchWithRetry(ctx context.Context, st interfaces.FetchStrategy, url string, attempts int) (*interfaces.FetchResult, error) {
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := st.Fetch(ctx, url)
		if err == nil {
			return result, nil
		}
		lastErr = err

		s.logger.Debug().
			Str("strategy", st.Name()).
			Str("url", url).
			Int("attempt", attempt).
			Err(err).
			Msg("Fetch attempt failed")

		if attempt < attempts {
			delay := s.retryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, lastErr
}
