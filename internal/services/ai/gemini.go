package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-3-flash-preview"

// GeminiService is the Google-backed completion provider.
type GeminiService struct {
	config    *common.GeminiConfig
	logger    arbor.ILogger
	client    *genai.Client
	timeout   time.Duration
	available bool
}

var _ interfaces.AIService = (*GeminiService)(nil)

// NewGeminiService creates the Gemini provider. As with Claude, a missing
// API key or a client initialization failure disables the provider rather
// than failing startup.
func NewGeminiService(config *common.GeminiConfig, logger arbor.ILogger) *GeminiService {
	if config.Model == "" {
		config.Model = defaultGeminiModel
	}

	service := &GeminiService{
		config:  config,
		logger:  logger.WithPrefix("gemini"),
		timeout: common.ParseDurationOr(config.Timeout, defaultAITimeout),
	}

	if strings.TrimSpace(config.APIKey) == "" {
		service.logger.Debug().Msg("No Gemini API key configured, Gemini provider disabled")
		return service
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		service.logger.Warn().Err(err).Msg("Failed to initialize Gemini client, provider disabled")
		return service
	}

	service.client = client
	service.available = true

	service.logger.Debug().
		Str("model", config.Model).
		Dur("timeout", service.timeout).
		Msg("Gemini provider initialized")

	return service
}

// Complete sends one prompt to the model and returns the text parts of the
// first candidate that produced any.
func (s *GeminiService) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if !s.available {
		return "", models.ErrAIUnavailable
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromText(prompt)},
		},
	}

	generateConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}
	if systemPrompt != "" {
		generateConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	start := time.Now()
	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, contents, generateConfig)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text content")
	}

	s.logger.Debug().
		Int("prompt_length", len(prompt)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(start)).
		Msg("Gemini completion finished")

	return response.String(), nil
}

// Available reports whether the client initialized with an API key.
func (s *GeminiService) Available() bool {
	return s.available
}

// ProviderName identifies the provider in logs and health output.
func (s *GeminiService) ProviderName() string {
	return string(interfaces.AIProviderGemini)
}
