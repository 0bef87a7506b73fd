package seeds

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// maxSeedWords drops AI responses that are sentences rather than phrases.
const maxSeedWords = 5

// Service turns scraped content into seed keyword phrases. The AI provider
// is asked first; any failure there falls back to deterministic extraction
// from the structured page content.
type Service struct {
	enhancer interfaces.AIEnhancer
	logger   arbor.ILogger
}

// NewService creates a seed generator. enhancer may be nil, in which case
// only the deterministic path runs.
func NewService(enhancer interfaces.AIEnhancer, logger arbor.ILogger) interfaces.SeedGenerator {
	return &Service{
		enhancer: enhancer,
		logger:   logger.WithPrefix("seeds"),
	}
}

// Generate produces up to max seed phrases in the target language.
func (s *Service) Generate(ctx context.Context, scrape *models.ScrapeResult, language string, max int) ([]string, error) {
	if scrape == nil || len(scrape.Pages) == 0 {
		return nil, models.NewStageError(models.StepExtracting, models.ErrNoSeeds, "no scraped content to extract keywords from")
	}

	if s.enhancer != nil && s.enhancer.Available() {
		seeds, err := s.enhancer.GenerateSeedKeywords(ctx, scrape, language, max)
		if err == nil {
			if cleaned := cleanSeeds(seeds, max); len(cleaned) > 0 {
				s.logger.Info().
					Int("count", len(cleaned)).
					Str("language", language).
					Msg("Seed keywords generated by AI")
				return cleaned, nil
			}
			err = models.ErrNoSeeds
		}
		s.logger.Warn().
			Err(err).
			Msg("AI seed generation failed, using structured-content fallback")
	}

	seeds := fallbackSeeds(scrape.Pages, max)
	s.logger.Info().
		Int("count", len(seeds)).
		Int("pages", len(scrape.Pages)).
		Msg("Seed keywords extracted from page structure")
	return seeds, nil
}

// cleanSeeds canonicalizes, deduplicates, and caps the AI response. Entries
// longer than maxSeedWords are discarded.
func cleanSeeds(raw []string, max int) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		seed := models.CanonicalKeywordText(entry)
		if seed == "" || len(strings.Fields(seed)) > maxSeedWords {
			continue
		}
		if _, dup := seen[seed]; dup {
			continue
		}
		seen[seed] = struct{}{}
		out = append(out, seed)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
