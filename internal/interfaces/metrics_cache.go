package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/indago/internal/models"
)

// CachedKeyword is a keyword metrics entry persisted in the metrics cache.
// The key is country|language|keyword so the same keyword can carry
// different metrics per market.
type CachedKeyword struct {
	Key       string `badgerhold:"key"`
	Country   string
	Language  string
	Keyword   models.Keyword
	FetchedAt time.Time
}

// MetricsCache persists keyword metrics across research jobs so repeat
// lookups skip the remote provider.
type MetricsCache interface {
	// Lookup returns cached metrics fresher than maxAge, keyed by
	// canonical keyword text, plus the keywords that missed.
	Lookup(ctx context.Context, country, language string, keywords []string, maxAge time.Duration) (map[string]models.Keyword, []string, error)

	// Store upserts fetched metrics for a market.
	Store(ctx context.Context, country, language string, keywords []models.Keyword) error

	// Purge removes entries fetched before the cutoff and returns the
	// number removed.
	Purge(ctx context.Context, cutoff time.Time) (int, error)

	// Count returns the total number of cached entries.
	Count(ctx context.Context) (int, error)
}
