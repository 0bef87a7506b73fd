package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/models"
)

func testConfig(url string) *common.MetricsConfig {
	return &common.MetricsConfig{
		ServiceURL:      url,
		Timeout:         "5s",
		BatchSize:       50,
		MinSearchVolume: 10,
		MaxKeywords:     500,
		CacheTTL:        "168h",
	}
}

func ideasHandler(t *testing.T, requests *[]ideasRequest, respond func(batch ideasRequest) ideasResponse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/generate-keyword-ideas", r.URL.Path)

		var body ideasRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*requests = append(*requests, body)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(respond(body)))
	}
}

func TestGetKeywordMetricsBatching(t *testing.T) {
	var requests []ideasRequest
	server := httptest.NewServer(ideasHandler(t, &requests, func(batch ideasRequest) ideasResponse {
		return ideasResponse{
			Success: true,
			Keywords: []ideaResult{
				{Keyword: batch.Keywords[0], SearchVolume: 100, Competition: "low", CPC: 1_500_000, CPCHigh: 3_000_000},
			},
		}
	}))
	defer server.Close()

	seeds := make([]string, 120)
	for i := range seeds {
		seeds[i] = "seed " + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}

	client := NewClient(testConfig(server.URL), arbor.NewLogger())
	keywords, err := client.GetKeywordMetrics(context.Background(), seeds, "2756", "de")
	require.NoError(t, err)

	require.Len(t, requests, 3)
	assert.Len(t, requests[0].Keywords, 50)
	assert.Len(t, requests[1].Keywords, 50)
	assert.Len(t, requests[2].Keywords, 20)
	assert.Equal(t, "2756", requests[0].Country)
	assert.Equal(t, "de", requests[0].Language)

	require.Len(t, keywords, 3)
	assert.Equal(t, 1.5, keywords[0].CPCLow)
	assert.Equal(t, 3.0, keywords[0].CPCHigh)
}

func TestGetKeywordMetricsNormalization(t *testing.T) {
	var requests []ideasRequest
	server := httptest.NewServer(ideasHandler(t, &requests, func(ideasRequest) ideasResponse {
		return ideasResponse{
			Success: true,
			Keywords: []ideaResult{
				{Keyword: " Dental Implants ", SearchVolume: 880, Competition: "HIGH", CPC: 2_500_000, CPCHigh: 4_000_000},
				{Keyword: "dental implants", SearchVolume: 880, Competition: "high", CPC: 2_500_000, CPCHigh: 4_000_000},
				{Keyword: "rare phrase", SearchVolume: 5, Competition: "low"},
				{Keyword: "odd bucket", SearchVolume: 40, Competition: "fierce", CPC: 9_000_000, CPCHigh: 1_000_000},
			},
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), arbor.NewLogger())
	keywords, err := client.GetKeywordMetrics(context.Background(), []string{"dental"}, "2756", "de")
	require.NoError(t, err)

	require.Len(t, keywords, 2, "duplicate and low-volume entries dropped")

	assert.Equal(t, "dental implants", keywords[0].Text)
	assert.Equal(t, models.CompetitionHigh, keywords[0].Competition)
	assert.Equal(t, 2.5, keywords[0].CPCLow)

	assert.Equal(t, "odd bucket", keywords[1].Text)
	assert.Equal(t, models.CompetitionUnknown, keywords[1].Competition)
	assert.Equal(t, 9.0, keywords[1].CPCLow)
	assert.Equal(t, 9.0, keywords[1].CPCHigh, "cpcHigh raised to cpcLow")
}

func TestGetKeywordMetricsCap(t *testing.T) {
	var requests []ideasRequest
	server := httptest.NewServer(ideasHandler(t, &requests, func(ideasRequest) ideasResponse {
		resp := ideasResponse{Success: true}
		for _, text := range []string{"one two", "three four", "five six", "seven eight", "nine ten"} {
			resp.Keywords = append(resp.Keywords, ideaResult{Keyword: text, SearchVolume: 100, Competition: "low"})
		}
		return resp
	}))
	defer server.Close()

	config := testConfig(server.URL)
	config.MaxKeywords = 3

	client := NewClient(config, arbor.NewLogger())
	keywords, err := client.GetKeywordMetrics(context.Background(), []string{"seed"}, "2756", "de")
	require.NoError(t, err)
	assert.Len(t, keywords, 3)
}

func TestGetKeywordMetricsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ideasResponse{Success: false, Error: "quota exhausted"})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), arbor.NewLogger())
	_, err := client.GetKeywordMetrics(context.Background(), []string{"seed"}, "2756", "de")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestGetKeywordMetricsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), arbor.NewLogger())
	_, err := client.GetKeywordMetrics(context.Background(), []string{"seed"}, "2756", "de")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGetKeywordMetricsEmptySeeds(t *testing.T) {
	client := NewClient(testConfig("http://localhost:0"), arbor.NewLogger())
	_, err := client.GetKeywordMetrics(context.Background(), nil, "2756", "de")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNoSeeds))
}

func TestHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	client := NewClient(testConfig(server.URL), arbor.NewLogger())
	assert.True(t, client.Healthy(context.Background()))

	server.Close()
	assert.False(t, client.Healthy(context.Background()))
}

func TestVerifyCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/test-credentials", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(credentialsResponse{Success: true, KeywordsReturned: 1})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), arbor.NewLogger())
	assert.NoError(t, client.VerifyCredentials(context.Background()))
}

func TestVerifyCredentialsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(credentialsResponse{Success: false, Error: "invalid refresh token"})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), arbor.NewLogger())
	err := client.VerifyCredentials(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid refresh token")
}
