package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// stubStrategy counts calls and fails a configurable number of times
type stubStrategy struct {
	name      string
	available bool
	failCount int
	calls     int
}

func (s *stubStrategy) Name() string    { return s.name }
func (s *stubStrategy) Available() bool { return s.available }

func (s *stubStrategy) Fetch(ctx context.Context, url string) (*interfaces.FetchResult, error) {
	s.calls++
	if s.calls <= s.failCount {
		return nil, errors.New("simulated fetch failure")
	}
	return &interfaces.FetchResult{
		HTML:       "<html><body>ok</body></html>",
		FinalURL:   url,
		StatusCode: 200,
	}, nil
}

func TestHTTPStrategyFetch(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><head><title>Test</title></head><body>hello</body></html>")
	}))
	defer server.Close()

	strategy := NewHTTPStrategy(5*time.Second, 100, "indago-test/1.0", arbor.NewLogger())
	require.True(t, strategy.Available())
	assert.Equal(t, "http", strategy.Name())

	result, err := strategy.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 200, result.StatusCode)
	assert.Contains(t, result.HTML, "<title>Test</title>")
	assert.Equal(t, server.URL, result.FinalURL)
	assert.Equal(t, "indago-test/1.0", gotUserAgent)
}

func TestHTTPStrategyStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	strategy := NewHTTPStrategy(5*time.Second, 100, "indago-test/1.0", arbor.NewLogger())
	_, err := strategy.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestHTTPStrategyFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/middle", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/middle", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>destination</body></html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	strategy := NewHTTPStrategy(5*time.Second, 100, "indago-test/1.0", arbor.NewLogger())
	result, err := strategy.Fetch(context.Background(), server.URL+"/start")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/final", result.FinalURL)
	assert.Contains(t, result.HTML, "destination")
}

func TestHTTPStrategyRedirectLimit(t *testing.T) {
	mux := http.NewServeMux()
	for i := 0; i < 10; i++ {
		from, to := fmt.Sprintf("/hop%d", i), fmt.Sprintf("/hop%d", i+1)
		mux.HandleFunc(from, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, to, http.StatusFound)
		})
	}
	server := httptest.NewServer(mux)
	defer server.Close()

	strategy := NewHTTPStrategy(5*time.Second, 100, "indago-test/1.0", arbor.NewLogger())
	_, err := strategy.Fetch(context.Background(), server.URL+"/hop0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirects")
}

func TestHTTPStrategyRejectsNonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4")
	}))
	defer server.Close()

	strategy := NewHTTPStrategy(5*time.Second, 100, "indago-test/1.0", arbor.NewLogger())
	_, err := strategy.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestFetchRetriesBeforeSuccess(t *testing.T) {
	browser := &stubStrategy{name: "browser", available: true, failCount: 2}
	plain := &stubStrategy{name: "http", available: true}

	svc := NewService(browser, plain, time.Millisecond, 3, arbor.NewLogger())

	result, used, err := svc.Fetch(context.Background(), "https://example.com", models.StrategyAuto, 3)
	require.NoError(t, err)
	assert.Equal(t, "browser", used)
	assert.Equal(t, 3, browser.calls, "third attempt should succeed")
	assert.Zero(t, plain.calls, "fallback must not run when browser succeeds")
	assert.Equal(t, 200, result.StatusCode)
}

func TestFetchAutoFallsBackToHTTP(t *testing.T) {
	browser := &stubStrategy{name: "browser", available: true, failCount: 99}
	plain := &stubStrategy{name: "http", available: true}

	svc := NewService(browser, plain, time.Millisecond, 2, arbor.NewLogger())

	result, used, err := svc.Fetch(context.Background(), "https://example.com", models.StrategyAuto, 2)
	require.NoError(t, err)
	assert.Equal(t, "http", used)
	assert.Equal(t, 2, browser.calls, "browser gets its full attempt budget first")
	assert.Equal(t, 1, plain.calls)
	assert.NotNil(t, result)
}

func TestFetchSkipsUnavailableBrowser(t *testing.T) {
	browser := &stubStrategy{name: "browser", available: false}
	plain := &stubStrategy{name: "http", available: true}

	svc := NewService(browser, plain, time.Millisecond, 3, arbor.NewLogger())

	_, used, err := svc.Fetch(context.Background(), "https://example.com", models.StrategyAuto, 3)
	require.NoError(t, err)
	assert.Equal(t, "http", used)
	assert.Zero(t, browser.calls)
}

func TestFetchExplicitStrategyDoesNotFallBack(t *testing.T) {
	browser := &stubStrategy{name: "browser", available: true, failCount: 99}
	plain := &stubStrategy{name: "http", available: true}

	svc := NewService(browser, plain, time.Millisecond, 2, arbor.NewLogger())

	_, _, err := svc.Fetch(context.Background(), "https://example.com", models.StrategyBrowser, 2)
	require.Error(t, err)
	assert.Zero(t, plain.calls, "explicit browser strategy must not fall back")

	_, used, err := svc.Fetch(context.Background(), "https://example.com", models.StrategyHTTP, 2)
	require.NoError(t, err)
	assert.Equal(t, "http", used)
	assert.Equal(t, 2, browser.calls, "browser budget unchanged from earlier call")
}

func TestFetchHonoursCancellation(t *testing.T) {
	browser := &stubStrategy{name: "browser", available: true, failCount: 99}
	plain := &stubStrategy{name: "http", available: true, failCount: 99}

	svc := NewService(browser, plain, 50*time.Millisecond, 5, arbor.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := svc.Fetch(ctx, "https://example.com", models.StrategyAuto, 5)
	require.Error(t, err)
	assert.LessOrEqual(t, browser.calls, 1, "cancelled context must stop the retry loop")
}
