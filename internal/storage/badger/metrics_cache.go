package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// MetricsCacheStorage implements the MetricsCache interface for Badger
type MetricsCacheStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMetricsCacheStorage creates a new MetricsCacheStorage instance
func NewMetricsCacheStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MetricsCache {
	return &MetricsCacheStorage{
		db:     db,
		logger: logger,
	}
}

// cacheKey composes the storage key for one keyword in one market
func cacheKey(country, language, keyword string) string {
	return country + "|" + language + "|" + models.CanonicalKeywordText(keyword)
}

// Lookup returns cached metrics fresher than maxAge keyed by canonical
// keyword text, plus the keywords that missed the cache
func (s *MetricsCacheStorage) Lookup(ctx context.Context, country, language string, keywords []string, maxAge time.Duration) (map[string]models.Keyword, []string, error) {
	hits := make(map[string]models.Keyword)
	misses := make([]string, 0, len(keywords))
	cutoff := time.Now().Add(-maxAge)

	for _, kw := range keywords {
		canonical := models.CanonicalKeywordText(kw)
		if canonical == "" {
			continue
		}
		if _, seen := hits[canonical]; seen {
			continue
		}

		var entry interfaces.CachedKeyword
		err := s.db.Store().Get(cacheKey(country, language, kw), &entry)
		if err == badgerhold.ErrNotFound {
			misses = append(misses, kw)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read metrics cache: %w", err)
		}

		if entry.FetchedAt.Before(cutoff) {
			misses = append(misses, kw)
			continue
		}
		hits[canonical] = entry.Keyword
	}

	return hits, misses, nil
}

// Store upserts fetched metrics for a market
func (s *MetricsCacheStorage) Store(ctx context.Context, country, language string, keywords []models.Keyword) error {
	now := time.Now()

	for _, kw := range keywords {
		canonical := models.CanonicalKeywordText(kw.Text)
		if canonical == "" {
			continue
		}

		entry := interfaces.CachedKeyword{
			Key:       cacheKey(country, language, canonical),
			Country:   country,
			Language:  language,
			Keyword:   kw,
			FetchedAt: now,
		}
		if err := s.db.Store().Upsert(entry.Key, &entry); err != nil {
			return fmt.Errorf("failed to cache metrics for %q: %w", kw.Text, err)
		}
	}

	return nil
}

// Purge removes entries fetched before the cutoff and returns the number removed
func (s *MetricsCacheStorage) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	var stale []interfaces.CachedKeyword
	if err := s.db.Store().Find(&stale, badgerhold.Where("FetchedAt").Lt(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to list stale cache entries: %w", err)
	}

	removed := 0
	for _, entry := range stale {
		if err := s.db.Store().Delete(entry.Key, &interfaces.CachedKeyword{}); err != nil {
			s.logger.Warn().Str("key", entry.Key).Err(err).Msg("Failed to delete stale cache entry")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("Purged stale metrics cache entries")
	}
	return removed, nil
}

// Count returns the total number of cached entries
func (s *MetricsCacheStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&interfaces.CachedKeyword{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return int(count), nil
}
