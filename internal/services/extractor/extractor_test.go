package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

const fixtureHTML = `<html>
<head>
  <title>  Dental Clinic Zurich  </title>
  <meta name="description" content="Family dentistry and cosmetic dental care in Zurich.">
</head>
<body>
  <nav><a href="/about">About our clinic team</a></nav>
  <header><h1>Header junk</h1></header>
  <div class="cookie-banner"><p>We use cookies to improve your experience while browsing this site today.</p></div>
  <div id="main-menu"><li>Menu entry that is long enough</li></div>
  <h1>Dental Clinic Zurich</h1>
  <h1>Dental Clinic Zurich</h1>
  <h2>Our Services</h2>
  <h2>Opening Hours</h2>
  <h3>Teeth Whitening</h3>
  <p>We offer professional teeth whitening treatments for patients across Zurich and surrounding areas.</p>
  <p>Short paragraph.</p>
  <ul>
    <li>Dental hygiene and cleaning</li>
    <li>Checkups</li>
  </ul>
  <a href="#top">Back to top section</a>
  <a href="/services">Our dental services</a>
  <a href="/services-overview">Our dental services</a>
  <a href="/x">Go</a>
  <img src="/a.jpg" alt="Dentist treating a patient">
  <img src="/b.jpg" alt="img">
  <script>var tracking = true;</script>
</body>
</html>`

func newTestExtractor() *Service {
	return &Service{logger: arbor.NewLogger()}
}

func TestExtract(t *testing.T) {
	content, err := newTestExtractor().Extract(fixtureHTML, "https://dental-zurich.ch")
	require.NoError(t, err)

	assert.Equal(t, "https://dental-zurich.ch", content.URL)
	assert.Equal(t, "Dental Clinic Zurich", content.Title)
	assert.Equal(t, "Family dentistry and cosmetic dental care in Zurich.", content.MetaDescription)

	// Headings: header element removed, duplicates collapsed in order
	assert.Equal(t, []string{"Dental Clinic Zurich"}, content.H1)
	assert.Equal(t, []string{"Our Services", "Opening Hours"}, content.H2)
	assert.Equal(t, []string{"Teeth Whitening"}, content.H3)

	// Cookie banner removed, short paragraph dropped
	require.Len(t, content.Paragraphs, 1)
	assert.Contains(t, content.Paragraphs[0], "teeth whitening treatments")

	// Menu list item removed with its container, short item dropped
	assert.Equal(t, []string{"Dental hygiene and cleaning"}, content.ListItems)

	// Nav anchors removed; fragment, short and duplicate anchors dropped
	assert.Equal(t, []string{"Our dental services"}, content.Links)

	// Alt text length must exceed three characters
	assert.Equal(t, []string{"Dentist treating a patient"}, content.Images)

	assert.Positive(t, content.WordCount)
}

func TestExtractTitleFallsBackToH1(t *testing.T) {
	html := `<html><body><h1>Emergency Plumbing Services</h1></body></html>`

	content, err := newTestExtractor().Extract(html, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Emergency Plumbing Services", content.Title)
}

func TestExtractMetaDescriptionOGFallback(t *testing.T) {
	html := `<html><head>
	  <meta property="og:description" content="Social sharing description text.">
	</head><body></body></html>`

	content, err := newTestExtractor().Extract(html, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Social sharing description text.", content.MetaDescription)
}

func TestExtractContainerDirectTextOnly(t *testing.T) {
	html := `<html><body>
	  <section>
	    Comprehensive dental care delivered by an experienced team using modern pain free equipment.
	    <p>This nested paragraph discusses dental implants and crowns for damaged teeth in detail.</p>
	  </section>
	</body></html>`

	content, err := newTestExtractor().Extract(html, "https://example.com")
	require.NoError(t, err)

	// The nested paragraph and the section's own text are separate entries;
	// the section entry must not repeat the nested paragraph's words.
	require.Len(t, content.Paragraphs, 2)
	assert.Contains(t, content.Paragraphs[0], "dental implants and crowns")
	assert.Contains(t, content.Paragraphs[1], "Comprehensive dental care")
	assert.NotContains(t, content.Paragraphs[1], "implants")
}

func TestExtractEmptyDocument(t *testing.T) {
	content, err := newTestExtractor().Extract("", "https://example.com")
	require.NoError(t, err)
	assert.Empty(t, content.Title)
	assert.Zero(t, content.WordCount)
	assert.Empty(t, content.Paragraphs)
}

func TestExtractWordCountCapsAnchors(t *testing.T) {
	html := `<html><body><h1>Link directory page title</h1>`
	for i := 0; i < 80; i++ {
		html += `<a href="/page">unique anchor text entry ` + string(rune('a'+i%26)) + string(rune('a'+i/26)) + `</a>`
	}
	html += `</body></html>`

	content, err := newTestExtractor().Extract(html, "https://example.com")
	require.NoError(t, err)
	require.Greater(t, len(content.Links), 50)

	// 4 title words + 50 capped anchors x 5 words each
	assert.Equal(t, 4+50*5, content.WordCount)
}
