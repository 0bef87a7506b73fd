package interfaces

import "context"

// AIProvider identifies a generative AI backend.
type AIProvider string

const (
	// AIProviderClaude uses the Anthropic Claude API
	AIProviderClaude AIProvider = "claude"
	// AIProviderGemini uses the Google Gemini API
	AIProviderGemini AIProvider = "gemini"
)

// AIService is a minimal completion client over one provider. The pipeline
// only ever needs "given this prompt, return text whose JSON payload parses".
type AIService interface {
	// Complete sends a prompt with an optional system instruction and
	// returns the raw text response.
	//
	// Parameters:
	//   - ctx: context for cancellation and timeout
	//   - systemPrompt: instruction framing the task (may be empty)
	//   - prompt: the user prompt
	//
	// Returns:
	//   - string: raw model output
	//   - error: transport or provider error
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)

	// Available reports whether the provider is configured and reachable.
	Available() bool

	// ProviderName returns the provider identifier for logging.
	ProviderName() string
}
