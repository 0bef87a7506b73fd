package seeds

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

type stubEnhancer struct {
	seeds     []string
	err       error
	available bool
	calls     int
}

func (e *stubEnhancer) GenerateSeedKeywords(ctx context.Context, scrape *models.ScrapeResult, language string, max int) ([]string, error) {
	e.calls++
	return e.seeds, e.err
}

func (e *stubEnhancer) RegroupSuggestions(ctx context.Context, clusters []models.Cluster, siteContext *models.SiteContext, keywords []models.Keyword, language string) (*interfaces.RegroupResult, error) {
	return nil, errors.New("not implemented")
}

func (e *stubEnhancer) Scrutinize(ctx context.Context, clusters []models.Cluster, keywords []models.Keyword, siteContext *models.SiteContext, language string) (*interfaces.ScrutinyResult, error) {
	return nil, errors.New("not implemented")
}

func (e *stubEnhancer) EnhanceCluster(ctx context.Context, cluster *models.Cluster, siteContext *models.SiteContext, language string) (*interfaces.ClusterEnhancement, error) {
	return nil, errors.New("not implemented")
}

func (e *stubEnhancer) Available() bool { return e.available }

func testScrape() *models.ScrapeResult {
	return &models.ScrapeResult{
		Pages: []models.PageContent{
			{
				Title:           "Dental Implants Zurich",
				MetaDescription: "Quality dental implants and dental care in Zurich",
				H1:              []string{"Dental Implants"},
				H2:              []string{"Dental care services", "Learn more"},
				WordCount:       18,
			},
			{
				Title:           "Dental Care Zurich",
				MetaDescription: "Dental implants clinic",
				H1:              []string{"Dental implants Zurich"},
				WordCount:       9,
			},
		},
		TotalWords: 27,
	}
}

func TestGenerateUsesAI(t *testing.T) {
	enhancer := &stubEnhancer{
		available: true,
		seeds:     []string{"  Dental Implants ", "dental implants", "zahnarzt zürich", ""},
	}
	svc := NewService(enhancer, arbor.NewLogger())

	seeds, err := svc.Generate(context.Background(), testScrape(), "de", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"dental implants", "zahnarzt zürich"}, seeds)
	assert.Equal(t, 1, enhancer.calls)
}

func TestGenerateFallsBackOnAIError(t *testing.T) {
	enhancer := &stubEnhancer{available: true, err: errors.New("provider down")}
	svc := NewService(enhancer, arbor.NewLogger())

	seeds, err := svc.Generate(context.Background(), testScrape(), "en", 50)
	require.NoError(t, err)
	assert.NotEmpty(t, seeds, "fallback must produce seeds from headings")
	assert.Equal(t, 1, enhancer.calls)
}

func TestGenerateFallsBackOnEmptyAIResponse(t *testing.T) {
	enhancer := &stubEnhancer{available: true, seeds: []string{"", "   "}}
	svc := NewService(enhancer, arbor.NewLogger())

	seeds, err := svc.Generate(context.Background(), testScrape(), "en", 50)
	require.NoError(t, err)
	assert.NotEmpty(t, seeds)
}

func TestGenerateSkipsUnavailableAI(t *testing.T) {
	enhancer := &stubEnhancer{available: false, seeds: []string{"unused"}}
	svc := NewService(enhancer, arbor.NewLogger())

	seeds, err := svc.Generate(context.Background(), testScrape(), "en", 50)
	require.NoError(t, err)
	assert.NotEmpty(t, seeds)
	assert.Zero(t, enhancer.calls)
}

func TestGenerateWithoutEnhancer(t *testing.T) {
	svc := NewService(nil, arbor.NewLogger())

	seeds, err := svc.Generate(context.Background(), testScrape(), "en", 50)
	require.NoError(t, err)
	assert.NotEmpty(t, seeds)
}

func TestGenerateRejectsEmptyScrape(t *testing.T) {
	svc := NewService(nil, arbor.NewLogger())

	_, err := svc.Generate(context.Background(), nil, "en", 50)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNoSeeds))

	_, err = svc.Generate(context.Background(), &models.ScrapeResult{}, "en", 50)
	require.Error(t, err)
}

func TestFallbackSeedsCandidates(t *testing.T) {
	seeds := fallbackSeeds(testScrape().Pages, 0)
	require.NotEmpty(t, seeds)

	assert.Contains(t, seeds, "dental implants")
	assert.Contains(t, seeds, "dental care")
	assert.Contains(t, seeds, "dental")
	assert.Contains(t, seeds, "zurich")

	// below-threshold and navigation terms stay out
	assert.NotContains(t, seeds, "quality", "single occurrence")
	assert.NotContains(t, seeds, "services", "single occurrence")
	assert.NotContains(t, seeds, "learn", "generic navigation word")
	assert.NotContains(t, seeds, "more", "stop word")

	// the multi-word length bonus outranks any single token
	phraseIdx := indexOf(seeds, "dental implants")
	singleIdx := indexOf(seeds, "dental")
	assert.Less(t, phraseIdx, singleIdx)
}

func TestFallbackSeedsRespectsMax(t *testing.T) {
	full := fallbackSeeds(testScrape().Pages, 0)
	require.Greater(t, len(full), 3)

	capped := fallbackSeeds(testScrape().Pages, 3)
	require.Len(t, capped, 3)
	assert.Equal(t, full[:3], capped)
}

func TestFallbackSeedsNeedRepetition(t *testing.T) {
	pages := []models.PageContent{
		{Title: "Alpha bravo charlie", MetaDescription: "delta echo foxtrot"},
	}
	assert.Empty(t, fallbackSeeds(pages, 0))
}

func TestCleanSeeds(t *testing.T) {
	raw := []string{
		"  Dental Implants ",
		"dental implants",
		"",
		"one two three four five six",
		"Zahnarzt Zürich",
	}
	assert.Equal(t, []string{"dental implants", "zahnarzt zürich"}, cleanSeeds(raw, 10))
	assert.Equal(t, []string{"dental implants"}, cleanSeeds(raw, 1))
}

func TestIsContentToken(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"dental", true},
		{"sky", true},
		{"the", false},
		{"quickly", false},
		{"ab", false},
		{"xyz", false},
		{"2024", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isContentToken(tt.token), tt.token)
	}
}

func indexOf(items []string, target string) int {
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return -1
}
