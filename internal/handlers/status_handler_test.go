package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

type fakeMetricsService struct {
	healthy bool
}

func (f *fakeMetricsService) GetKeywordMetrics(ctx context.Context, seeds []string, country, language string) ([]models.Keyword, error) {
	return nil, nil
}

func (f *fakeMetricsService) Healthy(ctx context.Context) bool {
	return f.healthy
}

func (f *fakeMetricsService) VerifyCredentials(ctx context.Context) error {
	return nil
}

type fakeEnhancer struct {
	available bool
}

func (f *fakeEnhancer) GenerateSeedKeywords(ctx context.Context, scrape *models.ScrapeResult, language string, max int) ([]string, error) {
	return nil, nil
}

func (f *fakeEnhancer) RegroupSuggestions(ctx context.Context, clusters []models.Cluster, siteContext *models.SiteContext, keywords []models.Keyword, language string) (*interfaces.RegroupResult, error) {
	return nil, nil
}

func (f *fakeEnhancer) Scrutinize(ctx context.Context, clusters []models.Cluster, keywords []models.Keyword, siteContext *models.SiteContext, language string) (*interfaces.ScrutinyResult, error) {
	return nil, nil
}

func (f *fakeEnhancer) EnhanceCluster(ctx context.Context, cluster *models.Cluster, siteContext *models.SiteContext, language string) (*interfaces.ClusterEnhancement, error) {
	return nil, nil
}

func (f *fakeEnhancer) Available() bool {
	return f.available
}

func TestHealthHandlerReportsServiceState(t *testing.T) {
	handler := NewStatusHandler(&fakeMetricsService{healthy: true}, &fakeEnhancer{available: false}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status   string          `json:"status"`
		Uptime   string          `json:"uptime"`
		Services map[string]bool `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Uptime)
	assert.True(t, resp.Services["metrics"])
	assert.False(t, resp.Services["ai"])
}

func TestHealthHandlerToleratesMissingServices(t *testing.T) {
	handler := NewStatusHandler(nil, nil, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Services map[string]bool `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Services["metrics"])
	assert.False(t, resp.Services["ai"])
}
