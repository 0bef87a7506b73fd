package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/models"
)

type fakeRemote struct {
	keywords []models.Keyword
	err      error
	calls    [][]string
}

func (f *fakeRemote) GetKeywordMetrics(ctx context.Context, seeds []string, country, language string) ([]models.Keyword, error) {
	f.calls = append(f.calls, append([]string(nil), seeds...))
	return f.keywords, f.err
}

func (f *fakeRemote) Healthy(ctx context.Context) bool {
	return f.err == nil
}

func (f *fakeRemote) VerifyCredentials(ctx context.Context) error {
	return f.err
}

type fakeCache struct {
	hits      map[string]models.Keyword
	lookupErr error
	stored    []models.Keyword
}

func (f *fakeCache) Lookup(ctx context.Context, country, language string, keywords []string, maxAge time.Duration) (map[string]models.Keyword, []string, error) {
	if f.lookupErr != nil {
		return nil, nil, f.lookupErr
	}
	hits := make(map[string]models.Keyword)
	var misses []string
	for _, keyword := range keywords {
		canonical := models.CanonicalKeywordText(keyword)
		if cached, ok := f.hits[canonical]; ok {
			hits[canonical] = cached
		} else {
			misses = append(misses, canonical)
		}
	}
	return hits, misses, nil
}

func (f *fakeCache) Store(ctx context.Context, country, language string, keywords []models.Keyword) error {
	f.stored = append(f.stored, keywords...)
	return nil
}

func (f *fakeCache) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

func (f *fakeCache) Count(ctx context.Context) (int, error) {
	return len(f.hits), nil
}

func kw(text string, volume int) models.Keyword {
	return models.NewKeyword(text, volume, models.CompetitionLow, 1, 2)
}

func TestCachedAllHits(t *testing.T) {
	remote := &fakeRemote{}
	cache := &fakeCache{hits: map[string]models.Keyword{
		"dental implants": kw("dental implants", 880),
		"dental care":     kw("dental care", 320),
	}}

	svc := NewCachedService(remote, cache, testConfig(""), arbor.NewLogger())
	keywords, err := svc.GetKeywordMetrics(context.Background(), []string{"Dental Implants", "dental care"}, "2756", "de")
	require.NoError(t, err)

	assert.Empty(t, remote.calls, "full cache hit must not touch the provider")
	require.Len(t, keywords, 2)
	assert.Equal(t, "dental implants", keywords[0].Text)
	assert.Equal(t, "dental care", keywords[1].Text)
}

func TestCachedPartialMiss(t *testing.T) {
	remote := &fakeRemote{keywords: []models.Keyword{
		kw("zahnarzt zürich", 590),
		kw("zahnarzt notfall", 140),
	}}
	cache := &fakeCache{hits: map[string]models.Keyword{
		"dental implants": kw("dental implants", 880),
	}}

	svc := NewCachedService(remote, cache, testConfig(""), arbor.NewLogger())
	keywords, err := svc.GetKeywordMetrics(context.Background(), []string{"dental implants", "zahnarzt zürich"}, "2756", "de")
	require.NoError(t, err)

	require.Len(t, remote.calls, 1)
	assert.Equal(t, []string{"zahnarzt zürich"}, remote.calls[0], "only misses go to the provider")

	require.Len(t, keywords, 3, "cached hit plus both fresh expansions")
	assert.Equal(t, "dental implants", keywords[0].Text)

	assert.Len(t, cache.stored, 2, "fresh batch stored for the next job")
}

func TestCachedLookupFailureFallsThrough(t *testing.T) {
	remote := &fakeRemote{keywords: []models.Keyword{kw("dental implants", 880)}}
	cache := &fakeCache{lookupErr: errors.New("store offline")}

	svc := NewCachedService(remote, cache, testConfig(""), arbor.NewLogger())
	keywords, err := svc.GetKeywordMetrics(context.Background(), []string{"dental implants"}, "2756", "de")
	require.NoError(t, err)

	require.Len(t, remote.calls, 1)
	assert.Equal(t, []string{"dental implants"}, remote.calls[0])
	assert.Len(t, keywords, 1)
}

func TestCachedRemoteErrorPropagates(t *testing.T) {
	remote := &fakeRemote{err: errors.New("quota exhausted")}
	cache := &fakeCache{hits: map[string]models.Keyword{}}

	svc := NewCachedService(remote, cache, testConfig(""), arbor.NewLogger())
	_, err := svc.GetKeywordMetrics(context.Background(), []string{"dental implants"}, "2756", "de")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestCachedNilCachePassesThrough(t *testing.T) {
	remote := &fakeRemote{keywords: []models.Keyword{kw("dental implants", 880)}}

	svc := NewCachedService(remote, nil, testConfig(""), arbor.NewLogger())
	keywords, err := svc.GetKeywordMetrics(context.Background(), []string{"dental implants"}, "2756", "de")
	require.NoError(t, err)
	require.Len(t, remote.calls, 1)
	assert.Len(t, keywords, 1)
}

func TestCachedCapAppliesToMerged(t *testing.T) {
	remote := &fakeRemote{keywords: []models.Keyword{
		kw("fresh one", 100), kw("fresh two", 90), kw("fresh three", 80),
	}}
	cache := &fakeCache{hits: map[string]models.Keyword{
		"cached one": kw("cached one", 200),
		"cached two": kw("cached two", 150),
	}}

	config := testConfig("")
	config.MaxKeywords = 4

	svc := NewCachedService(remote, cache, config, arbor.NewLogger())
	keywords, err := svc.GetKeywordMetrics(context.Background(), []string{"cached one", "cached two", "missing"}, "2756", "de")
	require.NoError(t, err)
	assert.Len(t, keywords, 4)
}
