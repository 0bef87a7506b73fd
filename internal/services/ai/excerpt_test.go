package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/indago/internal/models"
)

func TestScrapeExcerptRendersMarkdown(t *testing.T) {
	scrape := &models.ScrapeResult{
		Pages: []models.PageContent{
			{
				Title:           "Zurich Dental Clinic",
				MetaDescription: "Dental implants and teeth whitening in Zurich",
				H2:              []string{"Dental Implants"},
				Paragraphs:      []string{"We restore smiles with modern dental implants."},
			},
			{
				Title: "Teeth Whitening",
				H2:    []string{"Whitening Options"},
			},
		},
	}

	excerpt := scrapeExcerpt(scrape)

	assert.Contains(t, excerpt, "# Zurich Dental Clinic")
	assert.Contains(t, excerpt, "## Dental Implants")
	assert.Contains(t, excerpt, "We restore smiles with modern dental implants.")
	assert.Contains(t, excerpt, "# Teeth Whitening")
	assert.Contains(t, excerpt, "Dental implants and teeth whitening in Zurich")
}

func TestScrapeExcerptCapsPages(t *testing.T) {
	pages := make([]models.PageContent, 0, excerptPageCap+2)
	titles := []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta", "Eta"}
	for _, title := range titles {
		pages = append(pages, models.PageContent{Title: title})
	}

	excerpt := scrapeExcerpt(&models.ScrapeResult{Pages: pages})

	assert.Contains(t, excerpt, "Epsilon")
	assert.NotContains(t, excerpt, "Zeta")
	assert.NotContains(t, excerpt, "Eta")
}

func TestScrapeExcerptCapsParagraphs(t *testing.T) {
	scrape := &models.ScrapeResult{
		Pages: []models.PageContent{
			{
				Title: "Services",
				Paragraphs: []string{
					"First paragraph about implants.",
					"Second paragraph about whitening.",
					"Third paragraph about checkups.",
					"Fourth paragraph about parking.",
				},
			},
		},
	}

	excerpt := scrapeExcerpt(scrape)

	assert.Contains(t, excerpt, "Third paragraph")
	assert.NotContains(t, excerpt, "Fourth paragraph")
}

func TestScrapeExcerptSkipsEmptyPages(t *testing.T) {
	scrape := &models.ScrapeResult{
		Pages: []models.PageContent{
			{},
			{Title: "Only Page"},
		},
	}

	excerpt := scrapeExcerpt(scrape)

	assert.True(t, strings.HasPrefix(excerpt, "# Only Page"), "excerpt should start with the first non-empty page: %q", excerpt)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "abcde...", truncateText("abcdefgh", 5))
	assert.Equal(t, strings.Repeat("ä", 5)+"...", truncateText(strings.Repeat("ä", 10), 5))
}

func TestContextSummary(t *testing.T) {
	full := &models.SiteContext{
		Title:       "Zurich Dental Clinic",
		Description: "Dental implants and teeth whitening",
	}
	assert.Equal(t, "Zurich Dental Clinic - Dental implants and teeth whitening", contextSummary(full))

	focusOnly := &models.SiteContext{Focus: []string{"dental implants", "teeth whitening"}}
	assert.Equal(t, "dental implants, teeth whitening", contextSummary(focusOnly))

	urlOnly := &models.SiteContext{URL: "https://zurichdental.ch"}
	assert.Equal(t, "https://zurichdental.ch", contextSummary(urlOnly))

	assert.Empty(t, contextSummary(nil))
	assert.Empty(t, contextSummary(&models.SiteContext{}))
}
