package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/export"
	"github.com/ternarybob/indago/internal/handlers"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/jobstore"
	"github.com/ternarybob/indago/internal/ratelimit"
	"github.com/ternarybob/indago/internal/services/ai"
	"github.com/ternarybob/indago/internal/services/cluster"
	"github.com/ternarybob/indago/internal/services/events"
	"github.com/ternarybob/indago/internal/services/extractor"
	"github.com/ternarybob/indago/internal/services/fetcher"
	"github.com/ternarybob/indago/internal/services/metrics"
	"github.com/ternarybob/indago/internal/services/research"
	"github.com/ternarybob/indago/internal/services/scraper"
	"github.com/ternarybob/indago/internal/services/seeds"
	"github.com/ternarybob/indago/internal/storage/badger"
)

// App represents the application with all its dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	BadgerDB     *badger.BadgerDB
	MetricsCache interfaces.MetricsCache

	// Services
	EventService    interfaces.EventService
	JobStore        interfaces.JobStore
	RateLimiter     interfaces.RateLimiter
	BrowserPool     *fetcher.BrowserPool
	Fetcher         interfaces.Fetcher
	Scraper         interfaces.ScraperService
	Seeds           interfaces.SeedGenerator
	Metrics         interfaces.MetricsService
	Engine          interfaces.ClusterEngine
	Enhancer        interfaces.AIEnhancer
	ResearchService interfaces.ResearchService
	ExportService   interfaces.ExportService

	// Handlers
	ResearchHandler *handlers.ResearchHandler
	ConfigHandler   *handlers.ConfigHandler
	StatusHandler   *handlers.StatusHandler
	APIHandler      *handlers.APIHandler
	WSHandler       *handlers.WebSocketHandler
	WSWriter        *handlers.WebSocketWriter

	cron      *cron.Cron
	ctx       context.Context
	cancelCtx context.CancelFunc
}

// New creates and initializes a new application instance
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       ctx,
		cancelCtx: cancel,
	}

	if err := app.initStorage(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Event service and websocket hub come up before the rest so job
	// progress and log streaming cover initialization.
	app.EventService = events.NewService(logger)
	app.WSHandler = handlers.NewWebSocketHandler(app.EventService, logger)
	if err := events.SubscribeLoggerToAllEvents(app.EventService, logger); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to subscribe logger to job events")
	}

	app.WSWriter = handlers.NewWebSocketWriter(app.WSHandler, &cfg.WebSocket)
	app.WSWriter.Start()
	logger.SetChannel("websocket", app.WSWriter.Channel())

	app.initServices()
	app.initHandlers()

	if err := app.startMaintenance(); err != nil {
		cancel()
		return nil, err
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Bool("browser_pool", app.BrowserPool.IsInitialized()).
		Bool("ai_available", app.Enhancer.Available()).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage opens the BadgerDB metrics cache.
func (a *App) initStorage() error {
	db, err := badger.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to open metrics cache store: %w", err)
	}
	a.BadgerDB = db
	a.MetricsCache = badger.NewMetricsCacheStorage(db, a.Logger)

	a.Logger.Debug().
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Metrics cache storage initialized")
	return nil
}

// initServices wires the pipeline stage services bottom-up.
func (a *App) initServices() {
	cfg := a.Config

	a.JobStore = jobstore.New(jobstore.DefaultRetention, a.Logger)
	a.RateLimiter = ratelimit.New(
		common.ParseDurationOr(cfg.RateLimit.Window, time.Hour),
		cfg.RateLimit.MaxRequests,
		a.Logger,
	)
	a.Logger.Debug().Msg("Job store and rate limiter initialized")

	// The browser pool is best effort: when no instance launches, every
	// fetch downgrades to the plain HTTP strategy.
	poolConfig := fetcher.BrowserPoolConfig{
		Instances: cfg.Scraper.BrowserInstances,
		UserAgent: cfg.Scraper.UserAgent,
		Headless:  cfg.Scraper.Headless,
	}
	a.BrowserPool = fetcher.NewBrowserPool(poolConfig, a.Logger)
	if err := a.BrowserPool.Init(poolConfig); err != nil {
		a.Logger.Warn().
			Err(err).
			Msg("Browser pool unavailable, fetches fall back to plain HTTP")
	}

	navTimeout := common.ParseDurationOr(cfg.Scraper.Timeout, 30*time.Second)
	bodyTimeout := common.ParseDurationOr(cfg.Scraper.BodyWaitTimeout, 5*time.Second)
	a.Fetcher = fetcher.NewService(
		fetcher.NewBrowserStrategy(a.BrowserPool, navTimeout, bodyTimeout, a.Logger),
		fetcher.NewHTTPStrategy(navTimeout, cfg.Scraper.RequestsPerSecond, cfg.Scraper.UserAgent, a.Logger),
		common.ParseDurationOr(cfg.Scraper.RetryDelay, time.Second),
		cfg.Scraper.RetryAttempts,
		a.Logger,
	)

	a.Scraper = scraper.NewService(
		a.Fetcher,
		extractor.NewService(a.Logger),
		common.ParseDurationOr(cfg.Research.ScrapeCacheTTL, 15*time.Minute),
		cfg.Scraper.UserAgent,
		a.Logger,
	)
	a.Logger.Debug().Msg("Scraper service initialized")

	provider := ai.NewProvider(cfg, a.Logger)
	a.Enhancer = ai.NewEnhancer(provider, a.Logger)
	if a.Enhancer.Available() {
		a.Logger.Info().
			Str("provider", provider.ProviderName()).
			Msg("AI provider configured")
	} else {
		a.Logger.Warn().Msg("No AI provider configured, seed expansion and cluster enhancement are skipped")
	}

	a.Seeds = seeds.NewService(a.Enhancer, a.Logger)

	a.Metrics = metrics.NewCachedService(
		metrics.NewClient(&cfg.Metrics, a.Logger),
		a.MetricsCache,
		&cfg.Metrics,
		a.Logger,
	)
	a.Logger.Debug().
		Str("service_url", cfg.Metrics.ServiceURL).
		Msg("Metrics service initialized")

	a.Engine = cluster.NewService(a.Logger)
	a.ExportService = export.NewService(a.Logger)

	a.ResearchService = research.NewService(
		a.JobStore,
		a.RateLimiter,
		a.Scraper,
		a.Seeds,
		a.Metrics,
		a.Engine,
		a.Enhancer,
		a.EventService,
		cfg,
		a.Logger,
	)
	a.Logger.Debug().Msg("Research service initialized")
}

// initHandlers creates the HTTP handlers over the wired services.
func (a *App) initHandlers() {
	a.ResearchHandler = handlers.NewResearchHandler(a.ResearchService, a.ExportService, a.Config, a.Logger)
	a.ConfigHandler = handlers.NewConfigHandler()
	a.StatusHandler = handlers.NewStatusHandler(a.Metrics, a.Enhancer, a.Logger)
	a.APIHandler = handlers.NewAPIHandler()
	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// startMaintenance schedules the hourly sweeps.
func (a *App) startMaintenance() error {
	a.cron = cron.New()
	if _, err := a.cron.AddFunc("0 * * * *", a.runMaintenance); err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	a.cron.Start()

	a.Logger.Debug().Msg("Hourly maintenance scheduled")
	return nil
}

// runMaintenance drops expired jobs, idle rate-limit state, and stale
// cached metrics.
func (a *App) runMaintenance() {
	jobs := a.JobStore.Sweep()
	ips := a.RateLimiter.Sweep()

	cutoff := time.Now().Add(-common.ParseDurationOr(a.Config.Metrics.CacheTTL, 168*time.Hour))
	ctx, cancel := context.WithTimeout(a.ctx, time.Minute)
	defer cancel()

	purged, err := a.MetricsCache.Purge(ctx, cutoff)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Metrics cache purge failed")
	}

	if jobs > 0 || ips > 0 || purged > 0 {
		a.Logger.Info().
			Int("expired_jobs", jobs).
			Int("idle_ips", ips).
			Int("stale_metrics", purged).
			Msg("Maintenance sweep completed")
	}
}

// Close shuts the application down in reverse dependency order. In-flight
// pipelines are abandoned; their jobs die with the process.
func (a *App) Close() error {
	if a.cancelCtx != nil {
		a.cancelCtx()
	}

	if a.cron != nil {
		stopCtx := a.cron.Stop()
		<-stopCtx.Done()
	}

	if a.WSWriter != nil {
		if err := a.WSWriter.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close websocket log writer")
		}
	}

	if a.WSHandler != nil {
		if err := a.WSHandler.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close websocket handler")
		}
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.BrowserPool != nil {
		if err := a.BrowserPool.Shutdown(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to shut down browser pool")
		}
	}

	if a.BadgerDB != nil {
		if err := a.BadgerDB.Close(); err != nil {
			return fmt.Errorf("failed to close metrics cache store: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
