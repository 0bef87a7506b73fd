package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

func newTestCache(t *testing.T) interfaces.MetricsCache {
	t.Helper()

	tmpDir := t.TempDir()

	options := badgerhold.DefaultOptions
	options.Dir = tmpDir
	options.ValueDir = tmpDir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	db := &BadgerDB{store: store}
	return NewMetricsCacheStorage(db, arbor.NewLogger())
}

func TestMetricsCacheStoreAndLookup(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	fetched := []models.Keyword{
		models.NewKeyword("seo services", 1200, "high", 2.5, 4.1),
		models.NewKeyword("Content Marketing", 800, "medium", 1.2, 2.0),
	}
	require.NoError(t, cache.Store(ctx, "2756", "de", fetched))

	hits, misses, err := cache.Lookup(ctx, "2756", "de",
		[]string{"seo services", "content marketing", "link building"}, time.Hour)
	require.NoError(t, err)

	assert.Len(t, hits, 2)
	assert.Equal(t, []string{"link building"}, misses)

	kw, ok := hits["seo services"]
	require.True(t, ok)
	assert.Equal(t, 1200, kw.SearchVolume)
	assert.Equal(t, models.CompetitionHigh, kw.Competition)

	// Canonical text keys the hit map regardless of input casing
	_, ok = hits["content marketing"]
	assert.True(t, ok)
}

func TestMetricsCacheMarketIsolation(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "2756", "de",
		[]models.Keyword{models.NewKeyword("zahnarzt", 5000, "low", 0.8, 1.5)}))

	// Same keyword, different market: miss
	hits, misses, err := cache.Lookup(ctx, "2840", "en", []string{"zahnarzt"}, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, []string{"zahnarzt"}, misses)

	// Same keyword, different language in the same country: miss
	hits, misses, err = cache.Lookup(ctx, "2756", "fr", []string{"zahnarzt"}, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Len(t, misses, 1)
}

func TestMetricsCacheExpiry(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "2840", "en",
		[]models.Keyword{models.NewKeyword("plumber near me", 900, "high", 3.0, 5.5)}))

	// Zero maxAge means everything already fetched is stale
	hits, misses, err := cache.Lookup(ctx, "2840", "en", []string{"plumber near me"}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, []string{"plumber near me"}, misses)
}

func TestMetricsCachePurge(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "2840", "en", []models.Keyword{
		models.NewKeyword("emergency plumber", 400, "high", 4.0, 6.0),
		models.NewKeyword("drain cleaning", 700, "medium", 2.0, 3.5),
	}))

	count, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Cutoff in the past removes nothing
	removed, err := cache.Purge(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, removed)

	// Cutoff in the future removes everything
	removed, err = cache.Purge(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, err = cache.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMetricsCacheUpsertRefreshes(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "2276", "de",
		[]models.Keyword{models.NewKeyword("autoversicherung", 10000, "high", 5.0, 9.0)}))
	require.NoError(t, cache.Store(ctx, "2276", "de",
		[]models.Keyword{models.NewKeyword("autoversicherung", 12000, "high", 5.5, 9.5)}))

	count, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "upsert must not duplicate entries")

	hits, _, err := cache.Lookup(ctx, "2276", "de", []string{"autoversicherung"}, time.Hour)
	require.NoError(t, err)
	require.Contains(t, hits, "autoversicherung")
	assert.Equal(t, 12000, hits["autoversicherung"].SearchVolume)
}
