// -----------------------------------------------------------------------
// Extractor - DOM parsing and page content extraction
// -----------------------------------------------------------------------

package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// noisePatterns name class/id fragments whose elements carry navigation or
// boilerplate rather than page content.
var noisePatterns = []string{
	"sidebar", "menu", "navigation", "cookie", "popup",
	"modal", "advertisement", "ads", "comments",
}

const (
	minParagraphWords = 10
	minListItemLen    = 10
	minAnchorTextLen  = 3
	minImageAltLen    = 3
	wordCountLinkCap  = 50
)

// Service parses fetched HTML into structured page content
type Service struct {
	logger arbor.ILogger
}

// NewService creates an extractor
func NewService(logger arbor.ILogger) interfaces.Extractor {
	return &Service{logger: logger}
}

// Extract parses the HTML, strips boilerplate and returns the text signals
// used for seed generation
func (s *Service) Extract(html string, pageURL string) (*models.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	removeNoise(doc)

	content := &models.PageContent{
		URL:             pageURL,
		Title:           extractTitle(doc),
		MetaDescription: extractMetaDescription(doc),
		H1:              extractHeadings(doc, "h1"),
		H2:              extractHeadings(doc, "h2"),
		H3:              extractHeadings(doc, "h3"),
		Paragraphs:      extractParagraphs(doc),
		ListItems:       extractListItems(doc),
		Links:           extractAnchorTexts(doc),
		Images:          extractImageAlts(doc),
	}
	content.WordCount = countWords(content)

	s.logger.Trace().
		Str("url", pageURL).
		Str("title", content.Title).
		Int("paragraphs", len(content.Paragraphs)).
		Int("word_count", content.WordCount).
		Msg("Page content extracted")

	return content, nil
}

// removeNoise drops non-content elements before extraction
func removeNoise(doc *goquery.Document) {
	doc.Find("script, style, noscript, iframe, nav, footer, header, aside").Remove()
	for _, pattern := range noisePatterns {
		doc.Find(fmt.Sprintf("[class*=%q], [id*=%q]", pattern, pattern)).Remove()
	}
}

func extractTitle(doc *goquery.Document) string {
	if title := normalizeSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return normalizeSpace(doc.Find("h1").First().Text())
}

func extractMetaDescription(doc *goquery.Document) string {
	if desc, exists := doc.Find("meta[name='description']").Attr("content"); exists {
		if trimmed := normalizeSpace(desc); trimmed != "" {
			return trimmed
		}
	}
	if desc, exists := doc.Find("meta[property='og:description']").Attr("content"); exists {
		return normalizeSpace(desc)
	}
	return ""
}

// extractHeadings collects one heading level with order-preserving
// deduplication by trimmed text
func extractHeadings(doc *goquery.Document, level string) []string {
	var headings []string
	seen := make(map[string]bool)

	doc.Find(level).Each(func(i int, sel *goquery.Selection) {
		text := normalizeSpace(sel.Text())
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		headings = append(headings, text)
	})

	return headings
}

// extractParagraphs keeps paragraph-like text of at least ten words.
// For container elements only their direct text is taken so nested
// paragraphs are not counted twice.
func extractParagraphs(doc *goquery.Document) []string {
	var paragraphs []string

	doc.Find("p").Each(func(i int, sel *goquery.Selection) {
		text := normalizeSpace(sel.Text())
		if len(strings.Fields(text)) >= minParagraphWords {
			paragraphs = append(paragraphs, text)
		}
	})

	doc.Find("article, section, main").Each(func(i int, sel *goquery.Selection) {
		text := normalizeSpace(ownText(sel))
		if len(strings.Fields(text)) >= minParagraphWords {
			paragraphs = append(paragraphs, text)
		}
	})

	return paragraphs
}

// ownText returns the text of an element's direct text nodes only
func ownText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Contents().Each(func(i int, child *goquery.Selection) {
		if goquery.NodeName(child) == "#text" {
			b.WriteString(child.Text())
			b.WriteString(" ")
		}
	})
	return b.String()
}

func extractListItems(doc *goquery.Document) []string {
	var items []string
	doc.Find("li").Each(func(i int, sel *goquery.Selection) {
		text := normalizeSpace(sel.Text())
		if len(text) > minListItemLen {
			items = append(items, text)
		}
	})
	return items
}

// extractAnchorTexts keeps deduplicated anchor texts, skipping fragment
// links and trivially short labels
func extractAnchorTexts(doc *goquery.Document) []string {
	var texts []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if strings.HasPrefix(href, "#") {
			return
		}
		text := normalizeSpace(sel.Text())
		if len(text) <= minAnchorTextLen || seen[text] {
			return
		}
		seen[text] = true
		texts = append(texts, text)
	})

	return texts
}

func extractImageAlts(doc *goquery.Document) []string {
	var alts []string
	doc.Find("img[alt]").Each(func(i int, sel *goquery.Selection) {
		alt, _ := sel.Attr("alt")
		alt = normalizeSpace(alt)
		if len(alt) > minImageAltLen {
			alts = append(alts, alt)
		}
	})
	return alts
}

// countWords counts whitespace-separated words across all extracted
// fields, capping the anchor list so link-heavy pages do not dominate
func countWords(content *models.PageContent) int {
	var parts []string
	parts = append(parts, content.Title, content.MetaDescription)
	parts = append(parts, content.H1...)
	parts = append(parts, content.H2...)
	parts = append(parts, content.H3...)
	parts = append(parts, content.Paragraphs...)
	parts = append(parts, content.ListItems...)

	links := content.Links
	if len(links) > wordCountLinkCap {
		links = links[:wordCountLinkCap]
	}
	parts = append(parts, links...)
	parts = append(parts, content.Images...)

	return len(strings.Fields(strings.Join(parts, " ")))
}

// normalizeSpace trims and collapses internal whitespace
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
