package models

import "time"

// PageContent holds the structured text extracted from one crawled page.
// Instances are read-only once the extractor returns them.
type PageContent struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	MetaDescription string   `json:"metaDescription"`
	H1              []string `json:"h1"`
	H2              []string `json:"h2"`
	H3              []string `json:"h3"`
	Paragraphs      []string `json:"paragraphs"`
	ListItems       []string `json:"listItems"`
	Links           []string `json:"links"`
	Images          []string `json:"images"`
	WordCount       int      `json:"wordCount"`
}

// Headings returns all heading texts in level order (H1, H2, H3).
func (p *PageContent) Headings() []string {
	out := make([]string, 0, len(p.H1)+len(p.H2)+len(p.H3))
	out = append(out, p.H1...)
	out = append(out, p.H2...)
	out = append(out, p.H3...)
	return out
}

// ScrapeResult is the ordered outcome of a crawl. A successful scrape holds
// at least one page with a positive word count.
type ScrapeResult struct {
	Pages      []PageContent `json:"pages"`
	TotalWords int           `json:"totalWords"`
	Strategy   string        `json:"strategy"`
	ScrapedAt  time.Time     `json:"scrapedAt"`
}

// PageCount returns the number of successfully scraped pages.
func (r *ScrapeResult) PageCount() int {
	return len(r.Pages)
}
