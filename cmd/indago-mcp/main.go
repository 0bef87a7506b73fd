package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/jobstore"
	"github.com/ternarybob/indago/internal/ratelimit"
	"github.com/ternarybob/indago/internal/services/ai"
	"github.com/ternarybob/indago/internal/services/cluster"
	"github.com/ternarybob/indago/internal/services/extractor"
	"github.com/ternarybob/indago/internal/services/fetcher"
	"github.com/ternarybob/indago/internal/services/metrics"
	"github.com/ternarybob/indago/internal/services/research"
	"github.com/ternarybob/indago/internal/services/scraper"
	"github.com/ternarybob/indago/internal/services/seeds"
	"github.com/ternarybob/indago/internal/storage/badger"
)

func main() {
	// Load configuration. An explicit INDAGO_CONFIG path must exist; the
	// default indago.toml is optional and defaults plus environment
	// overrides apply without it.
	configPath := os.Getenv("INDAGO_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("indago.toml"); err == nil {
			configPath = "indago.toml"
		}
	}

	config, err := common.LoadFromFiles(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal console logger; stdio carries the MCP protocol, so only
	// warnings and errors are emitted.
	logger := arbor.NewLogger().WithConsoleWriter(arbormodels.WriterConfiguration{
		Type:       arbormodels.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
		TextOutput: true,
	}).WithLevelFromString("warn")

	// The HTTP server holds an exclusive lock on its own cache directory,
	// so the sidecar keeps a separate one.
	config.Storage.Badger.Path = config.Storage.Badger.Path + "-mcp"
	db, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open metrics cache store")
	}
	defer db.Close()
	metricsCache := badger.NewMetricsCacheStorage(db, logger)

	// Browser pool is best effort here as in the server: without it every
	// fetch downgrades to the plain HTTP strategy.
	poolConfig := fetcher.BrowserPoolConfig{
		Instances: config.Scraper.BrowserInstances,
		UserAgent: config.Scraper.UserAgent,
		Headless:  config.Scraper.Headless,
	}
	pool := fetcher.NewBrowserPool(poolConfig, logger)
	if err := pool.Init(poolConfig); err != nil {
		logger.Warn().Err(err).Msg("Browser pool unavailable, fetches fall back to plain HTTP")
	}
	defer pool.Shutdown()

	navTimeout := common.ParseDurationOr(config.Scraper.Timeout, 30*time.Second)
	bodyTimeout := common.ParseDurationOr(config.Scraper.BodyWaitTimeout, 5*time.Second)
	fetchService := fetcher.NewService(
		fetcher.NewBrowserStrategy(pool, navTimeout, bodyTimeout, logger),
		fetcher.NewHTTPStrategy(navTimeout, config.Scraper.RequestsPerSecond, config.Scraper.UserAgent, logger),
		common.ParseDurationOr(config.Scraper.RetryDelay, time.Second),
		config.Scraper.RetryAttempts,
		logger,
	)
	scrapeService := scraper.NewService(
		fetchService,
		extractor.NewService(logger),
		common.ParseDurationOr(config.Research.ScrapeCacheTTL, 15*time.Minute),
		config.Scraper.UserAgent,
		logger,
	)

	provider := ai.NewProvider(config, logger)
	enhancer := ai.NewEnhancer(provider, logger)
	seedService := seeds.NewService(enhancer, logger)
	metricsService := metrics.NewCachedService(
		metrics.NewClient(&config.Metrics, logger),
		metricsCache,
		&config.Metrics,
		logger,
	)

	// The research tool runs jobs synchronously, so the store and limiter
	// are never consulted; the orchestrator still expects real instances.
	researchService := research.NewService(
		jobstore.New(jobstore.DefaultRetention, logger),
		ratelimit.New(common.ParseDurationOr(config.RateLimit.Window, time.Hour), config.RateLimit.MaxRequests, logger),
		scrapeService,
		seedService,
		metricsService,
		cluster.NewService(logger),
		enhancer,
		nil,
		config,
		logger,
	)

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"indago",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Register research tools
	mcpServer.AddTool(createKeywordResearchTool(), handleKeywordResearch(researchService, config, logger))
	mcpServer.AddTool(createKeywordMetricsTool(), handleKeywordMetrics(metricsService, logger))
	mcpServer.AddTool(createListCountriesTool(), handleListCountries())

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
