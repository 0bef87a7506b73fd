package ai

import (
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
)

// NewProvider selects the completion provider from configuration. The
// configured default wins when it has an API key; otherwise the other
// provider is tried, so a single configured key is always honored. With no
// keys at all the default provider is returned in its unavailable state.
func NewProvider(cfg *common.Config, logger arbor.ILogger) interfaces.AIService {
	name := strings.ToLower(strings.TrimSpace(cfg.AI.DefaultProvider))

	var primary interfaces.AIService
	var alternate func() interfaces.AIService
	if name == string(interfaces.AIProviderGemini) {
		primary = NewGeminiService(&cfg.Gemini, logger)
		alternate = func() interfaces.AIService { return NewClaudeService(&cfg.Claude, logger) }
	} else {
		primary = NewClaudeService(&cfg.Claude, logger)
		alternate = func() interfaces.AIService { return NewGeminiService(&cfg.Gemini, logger) }
	}

	if primary.Available() {
		return primary
	}
	if second := alternate(); second.Available() {
		logger.Info().
			Str("configured", name).
			Str("provider", second.ProviderName()).
			Msg("Configured AI provider has no API key, using alternate provider")
		return second
	}
	return primary
}
