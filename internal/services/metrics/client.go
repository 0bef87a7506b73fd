package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

const (
	defaultBatchSize       = 50
	defaultTimeout         = 120 * time.Second
	defaultMinSearchVolume = 10
	defaultMaxKeywords     = 500
)

// ideasRequest is the provider's keyword-ideas request body.
type ideasRequest struct {
	Keywords []string `json:"keywords"`
	Country  string   `json:"country"`
	Language string   `json:"language"`
}

// ideasResponse is the provider's keyword-ideas response. CPC values are
// reported in micros.
type ideasResponse struct {
	Success  bool         `json:"success"`
	Keywords []ideaResult `json:"keywords"`
	Total    int          `json:"total"`
	Error    string       `json:"error"`
}

type ideaResult struct {
	Keyword      string  `json:"keyword"`
	SearchVolume int     `json:"searchVolume"`
	Competition  string  `json:"competition"`
	CPC          float64 `json:"cpc"`
	CPCHigh      float64 `json:"cpcHigh"`
}

type credentialsResponse struct {
	Success          bool   `json:"success"`
	KeywordsReturned int    `json:"keywordsReturned"`
	Error            string `json:"error"`
}

// Client talks to the keyword-metrics provider sidecar. Seeds are sent in
// batches; responses are concatenated, normalized, filtered by minimum
// search volume, and capped.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	batchSize       int
	minSearchVolume int
	maxKeywords     int
	logger          arbor.ILogger
}

// NewClient creates a metrics provider client from configuration.
func NewClient(config *common.MetricsConfig, logger arbor.ILogger) *Client {
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	minVolume := config.MinSearchVolume
	if minVolume < 0 {
		minVolume = defaultMinSearchVolume
	}
	maxKeywords := config.MaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = defaultMaxKeywords
	}

	return &Client{
		baseURL:         strings.TrimRight(config.ServiceURL, "/"),
		httpClient:      &http.Client{Timeout: common.ParseDurationOr(config.Timeout, defaultTimeout)},
		batchSize:       batchSize,
		minSearchVolume: minVolume,
		maxKeywords:     maxKeywords,
		logger:          logger.WithPrefix("metrics"),
	}
}

var _ interfaces.MetricsService = (*Client)(nil)

// GetKeywordMetrics resolves seeds into keywords with provider metrics.
func (c *Client) GetKeywordMetrics(ctx context.Context, seeds []string, country, language string) ([]models.Keyword, error) {
	if len(seeds) == 0 {
		return nil, models.NewStageError(models.StepEnriching, models.ErrNoSeeds, "no seeds to fetch metrics for")
	}

	var keywords []models.Keyword
	seen := make(map[string]struct{})

	for start := 0; start < len(seeds); start += c.batchSize {
		end := start + c.batchSize
		if end > len(seeds) {
			end = len(seeds)
		}
		batch := seeds[start:end]

		c.logger.Debug().
			Int("batch_start", start).
			Int("batch_size", len(batch)).
			Str("country", country).
			Str("language", language).
			Msg("Requesting keyword metrics batch")

		results, err := c.fetchBatch(ctx, batch, country, language)
		if err != nil {
			return nil, fmt.Errorf("metrics batch %d-%d failed: %w", start, end, err)
		}

		for _, idea := range results {
			keyword := models.NewKeyword(
				idea.Keyword,
				idea.SearchVolume,
				models.NormalizeCompetition(idea.Competition),
				idea.CPC/1e6,
				idea.CPCHigh/1e6,
			)
			if keyword.Text == "" || keyword.SearchVolume < c.minSearchVolume {
				continue
			}
			if _, dup := seen[keyword.Text]; dup {
				continue
			}
			seen[keyword.Text] = struct{}{}
			keywords = append(keywords, keyword)
			if len(keywords) >= c.maxKeywords {
				c.logger.Debug().Int("max_keywords", c.maxKeywords).Msg("Keyword cap reached")
				return keywords, nil
			}
		}
	}

	c.logger.Info().
		Int("seeds", len(seeds)).
		Int("keywords", len(keywords)).
		Msg("Keyword metrics fetched")

	return keywords, nil
}

func (c *Client) fetchBatch(ctx context.Context, batch []string, country, language string) ([]ideaResult, error) {
	body, err := json.Marshal(ideasRequest{Keywords: batch, Country: country, Language: language})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-keyword-ideas", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metrics provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("metrics provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var parsed ideasResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("provider error: %s", parsed.Error)
	}

	return parsed.Keywords, nil
}

// Healthy reports whether the provider answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Metrics health probe failed")
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// VerifyCredentials asks the provider to validate its upstream credentials
// with a minimal test request.
func (c *Client) VerifyCredentials(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/test-credentials", strings.NewReader("{}"))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("metrics provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	var parsed credentialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode credential test response: %w", err)
	}
	if !parsed.Success {
		return fmt.Errorf("credential test failed: %s", parsed.Error)
	}

	c.logger.Debug().
		Int("keywords_returned", parsed.KeywordsReturned).
		Msg("Metrics provider credentials verified")

	return nil
}
