package metrics

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

const defaultCacheTTL = 168 * time.Hour

// CachedService fronts a metrics provider with a persistent cache. Seeds
// with fresh cached metrics are excluded from the remote call; everything
// the remote returns is stored for the next job.
type CachedService struct {
	remote      interfaces.MetricsService
	cache       interfaces.MetricsCache
	ttl         time.Duration
	maxKeywords int
	logger      arbor.ILogger
}

// NewCachedService wraps remote with the metrics cache. A nil cache
// degrades to pass-through.
func NewCachedService(remote interfaces.MetricsService, cache interfaces.MetricsCache, config *common.MetricsConfig, logger arbor.ILogger) interfaces.MetricsService {
	maxKeywords := config.MaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = defaultMaxKeywords
	}
	return &CachedService{
		remote:      remote,
		cache:       cache,
		ttl:         common.ParseDurationOr(config.CacheTTL, defaultCacheTTL),
		maxKeywords: maxKeywords,
		logger:      logger.WithPrefix("metrics-cache"),
	}
}

// GetKeywordMetrics serves seeds from the cache where fresh and asks the
// remote provider for the rest. Cached hits come first in the result.
func (s *CachedService) GetKeywordMetrics(ctx context.Context, seeds []string, country, language string) ([]models.Keyword, error) {
	if s.cache == nil {
		return s.remote.GetKeywordMetrics(ctx, seeds, country, language)
	}

	hits, misses, err := s.cache.Lookup(ctx, country, language, seeds, s.ttl)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Metrics cache lookup failed, falling back to provider")
		return s.remote.GetKeywordMetrics(ctx, seeds, country, language)
	}

	var keywords []models.Keyword
	seen := make(map[string]struct{}, len(hits))
	for _, seed := range seeds {
		canonical := models.CanonicalKeywordText(seed)
		if keyword, ok := hits[canonical]; ok {
			if _, dup := seen[canonical]; dup {
				continue
			}
			seen[canonical] = struct{}{}
			keywords = append(keywords, keyword)
		}
	}

	if len(misses) == 0 {
		s.logger.Info().
			Int("seeds", len(seeds)).
			Int("cached", len(keywords)).
			Msg("All keyword metrics served from cache")
		return s.capped(keywords), nil
	}

	fresh, err := s.remote.GetKeywordMetrics(ctx, misses, country, language)
	if err != nil {
		return nil, err
	}

	if storeErr := s.cache.Store(ctx, country, language, fresh); storeErr != nil {
		s.logger.Warn().Err(storeErr).Msg("Failed to store keyword metrics in cache")
	}

	for _, keyword := range fresh {
		if _, dup := seen[keyword.Text]; dup {
			continue
		}
		seen[keyword.Text] = struct{}{}
		keywords = append(keywords, keyword)
	}

	s.logger.Info().
		Int("seeds", len(seeds)).
		Int("cached", len(hits)).
		Int("fetched", len(fresh)).
		Msg("Keyword metrics merged from cache and provider")

	return s.capped(keywords), nil
}

// Healthy defers to the remote provider.
func (s *CachedService) Healthy(ctx context.Context) bool {
	return s.remote.Healthy(ctx)
}

// VerifyCredentials defers to the remote provider.
func (s *CachedService) VerifyCredentials(ctx context.Context) error {
	return s.remote.VerifyCredentials(ctx)
}

func (s *CachedService) capped(keywords []models.Keyword) []models.Keyword {
	if len(keywords) > s.maxKeywords {
		return keywords[:s.maxKeywords]
	}
	return keywords
}
