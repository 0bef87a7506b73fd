package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountriesHandler(t *testing.T) {
	handler := NewConfigHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/research/config/countries", nil)
	rec := httptest.NewRecorder()

	handler.CountriesHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var countries []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &countries))
	require.NotEmpty(t, countries)

	names := make([]string, 0, len(countries))
	var switzerland map[string]string
	for _, c := range countries {
		names = append(names, c["name"])
		if c["code"] == "2756" {
			switzerland = c
		}
	}

	assert.True(t, sort.StringsAreSorted(names), "countries should be sorted by name")
	require.NotNil(t, switzerland)
	assert.Equal(t, "Switzerland", switzerland["name"])
	assert.Equal(t, "de", switzerland["defaultLanguage"])
	assert.Equal(t, "CHF", switzerland["currency"])
}

func TestLanguagesHandler(t *testing.T) {
	handler := NewConfigHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/research/config/languages", nil)
	rec := httptest.NewRecorder()

	handler.LanguagesHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var languages []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &languages))
	assert.True(t, sort.StringsAreSorted(languages))
	assert.Contains(t, languages, "en")
	assert.Contains(t, languages, "de")
}

func TestConfigHandlersRejectWrongMethod(t *testing.T) {
	handler := NewConfigHandler()

	rec := httptest.NewRecorder()
	handler.CountriesHandler(rec, httptest.NewRequest(http.MethodPost, "/api/research/config/countries", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	handler.LanguagesHandler(rec, httptest.NewRequest(http.MethodDelete, "/api/research/config/languages", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
