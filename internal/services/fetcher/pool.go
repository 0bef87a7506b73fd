// -----------------------------------------------------------------------
// Browser Pool - Shared headless Chrome instances for JavaScript rendering
// -----------------------------------------------------------------------

package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

// BrowserPool manages a pool of headless browser contexts. Fetches open a
// tab per request; the underlying browser processes are shared round-robin.
type BrowserPool struct {
	browsers         []context.Context
	browserCancels   []context.CancelFunc
	allocatorCancels []context.CancelFunc
	mu               sync.Mutex
	size             int
	currentIndex     int
	logger           arbor.ILogger
	userAgent        string
	initialized      bool
}

// BrowserPoolConfig holds configuration for the browser pool
type BrowserPoolConfig struct {
	Instances   int
	UserAgent   string
	Headless    bool
	StartupTest time.Duration
}

// NewBrowserPool creates an uninitialized browser pool
func NewBrowserPool(config BrowserPoolConfig, logger arbor.ILogger) *BrowserPool {
	return &BrowserPool{
		size:      config.Instances,
		userAgent: config.UserAgent,
		logger:    logger,
	}
}

// Init launches the browser instances. Call once at startup; a failure to
// launch any instance leaves the pool unavailable, which downgrades fetches
// to the plain HTTP strategy.
func (p *BrowserPool) Init(config BrowserPoolConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return fmt.Errorf("browser pool already initialized")
	}
	if config.Instances <= 0 {
		return fmt.Errorf("browser pool instances must be greater than 0, got %d", config.Instances)
	}

	p.size = config.Instances
	p.userAgent = config.UserAgent
	p.browsers = make([]context.Context, 0, p.size)
	p.browserCancels = make([]context.CancelFunc, 0, p.size)
	p.allocatorCancels = make([]context.CancelFunc, 0, p.size)
	p.currentIndex = 0

	p.logger.Info().
		Int("pool_size", p.size).
		Bool("headless", config.Headless).
		Msg("Initializing browser pool")

	created := 0
	var lastErr error
	for i := 0; i < p.size; i++ {
		if err := p.createInstance(i, config); err != nil {
			lastErr = err
			p.logger.Warn().
				Err(err).
				Int("browser_index", i).
				Msg("Failed to create browser instance")

			if created == 0 {
				p.cleanupInstances()
				return fmt.Errorf("failed to create any browser instances: %w", err)
			}
			continue
		}
		created++
	}

	if created < p.size {
		p.logger.Warn().
			Int("requested", p.size).
			Int("created", created).
			Err(lastErr).
			Msg("Created fewer browser instances than requested")
		p.size = created
	}

	p.initialized = true
	p.logger.Info().
		Int("browsers", len(p.browsers)).
		Msg("Browser pool initialized")

	return nil
}

// createInstance launches and smoke-tests one browser (mutex held)
func (p *BrowserPool) createInstance(index int, config BrowserPoolConfig) error {
	start := time.Now()

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(config.UserAgent),
	)

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(
		context.Background(),
		allocatorOpts...,
	)

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	testTimeout := 30 * time.Second
	if config.StartupTest > 0 {
		testTimeout = config.StartupTest
	}
	testCtx, testCancel := context.WithTimeout(browserCtx, testTimeout)
	defer testCancel()

	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return fmt.Errorf("browser instance failed startup test: %w", err)
	}

	p.browsers = append(p.browsers, browserCtx)
	p.browserCancels = append(p.browserCancels, browserCancel)
	p.allocatorCancels = append(p.allocatorCancels, allocatorCancel)

	p.logger.Debug().
		Int("browser_index", index).
		Dur("startup_time", time.Since(start)).
		Msg("Browser instance created")

	return nil
}

// Get returns a browser context using round-robin allocation. Callers open
// their own tab context on top of it and must not cancel the returned one.
func (p *BrowserPool) Get() (context.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil, fmt.Errorf("browser pool not initialized")
	}
	if len(p.browsers) == 0 {
		return nil, fmt.Errorf("no browser instances available")
	}

	index := p.currentIndex % len(p.browsers)
	p.currentIndex = (p.currentIndex + 1) % len(p.browsers)

	return p.browsers[index], nil
}

// IsInitialized reports whether the pool holds usable browsers
func (p *BrowserPool) IsInitialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized && len(p.browsers) > 0
}

// Shutdown cancels all browser instances. Hung browsers are abandoned
// after a grace period so shutdown cannot block indefinitely.
func (p *BrowserPool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil
	}

	count := len(p.browsers)
	p.logger.Info().Int("browser_count", count).Msg("Shutting down browser pool")

	done := make(chan struct{})
	go func() {
		p.cleanupInstances()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		p.logger.Warn().Int("browser_count", count).Msg("Browser pool shutdown timed out")
	}

	p.initialized = false
	return nil
}

// cleanupInstances cancels every browser and allocator context (mutex held)
func (p *BrowserPool) cleanupInstances() {
	for _, cancel := range p.browserCancels {
		if cancel != nil {
			cancel()
		}
	}
	for _, cancel := range p.allocatorCancels {
		if cancel != nil {
			cancel()
		}
	}
	p.browsers = nil
	p.browserCancels = nil
	p.allocatorCancels = nil
	p.currentIndex = 0
}
