package ai

import (
	"fmt"
	"html"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/indago/internal/models"
)

const (
	excerptPageCap      = 5
	excerptHeadingCap   = 6
	excerptParagraphCap = 3
	excerptRuneCap      = 6000
	summaryRuneCap      = 160
)

// scrapeExcerpt renders scraped pages as one markdown document for prompt
// context. The extractor hands back plain text signals, so each page is
// rebuilt as a small HTML fragment and run through the markdown converter;
// a page that fails to convert falls back to its joined raw text.
func scrapeExcerpt(scrape *models.ScrapeResult) string {
	converter := md.NewConverter("", true, nil)

	var b strings.Builder
	for i := range scrape.Pages {
		if i >= excerptPageCap {
			break
		}
		page := &scrape.Pages[i]
		section, err := converter.ConvertString(pageFragment(page))
		if err != nil || strings.TrimSpace(section) == "" {
			section = pageText(page)
		}
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(section)
	}

	return truncateText(b.String(), excerptRuneCap)
}

// pageFragment rebuilds the extracted signals as minimal HTML: title,
// meta description, headings, and the leading paragraphs.
func pageFragment(page *models.PageContent) string {
	var b strings.Builder
	if page.Title != "" {
		fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(page.Title))
	}
	if page.MetaDescription != "" {
		fmt.Fprintf(&b, "<p><em>%s</em></p>", html.EscapeString(page.MetaDescription))
	}
	for _, heading := range firstN(page.Headings(), excerptHeadingCap) {
		fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(heading))
	}
	for _, paragraph := range firstN(page.Paragraphs, excerptParagraphCap) {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(paragraph))
	}
	return b.String()
}

// pageText joins the raw signals line by line, used when markdown
// conversion produces nothing.
func pageText(page *models.PageContent) string {
	parts := make([]string, 0, 2+excerptHeadingCap+excerptParagraphCap)
	if page.Title != "" {
		parts = append(parts, page.Title)
	}
	if page.MetaDescription != "" {
		parts = append(parts, page.MetaDescription)
	}
	parts = append(parts, firstN(page.Headings(), excerptHeadingCap)...)
	parts = append(parts, firstN(page.Paragraphs, excerptParagraphCap)...)
	return strings.Join(parts, "\n")
}

// contextSummary reduces the site context to one short line for prompts and
// generated narratives.
func contextSummary(siteContext *models.SiteContext) string {
	if siteContext.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, 2)
	if siteContext.Title != "" {
		parts = append(parts, siteContext.Title)
	}
	if siteContext.Description != "" {
		parts = append(parts, truncateText(siteContext.Description, summaryRuneCap))
	}
	if len(parts) == 0 && len(siteContext.Focus) > 0 {
		parts = append(parts, strings.Join(siteContext.Focus, ", "))
	}
	if len(parts) == 0 {
		parts = append(parts, siteContext.URL)
	}
	return strings.Join(parts, " - ")
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

// truncateText cuts at a rune boundary, appending an ellipsis when trimmed.
func truncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
