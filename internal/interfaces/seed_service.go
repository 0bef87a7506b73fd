package interfaces

import (
	"context"

	"github.com/ternarybob/indago/internal/models"
)

// SeedGenerator produces candidate keyword phrases from scraped content.
// The AI path is primary; a deterministic TF-IDF fallback runs when the AI
// is unavailable or returns an unparseable response.
type SeedGenerator interface {
	Generate(ctx context.Context, scrape *models.ScrapeResult, language string, max int) ([]string, error)
}
