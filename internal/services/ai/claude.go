package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

const (
	defaultClaudeModel = "claude-haiku-3-5-20241022"
	defaultMaxTokens   = 4096
	defaultAITimeout   = 2 * time.Minute
)

// ClaudeService is the Anthropic-backed completion provider.
type ClaudeService struct {
	config    *common.ClaudeConfig
	logger    arbor.ILogger
	client    anthropic.Client
	timeout   time.Duration
	maxTokens int
	available bool
}

var _ interfaces.AIService = (*ClaudeService)(nil)

// NewClaudeService creates the Claude provider. A missing API key leaves the
// service constructed but unavailable, so the pipeline falls back to its
// deterministic paths instead of failing startup.
func NewClaudeService(config *common.ClaudeConfig, logger arbor.ILogger) *ClaudeService {
	if config.Model == "" {
		config.Model = defaultClaudeModel
	}
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	service := &ClaudeService{
		config:    config,
		logger:    logger.WithPrefix("claude"),
		timeout:   common.ParseDurationOr(config.Timeout, defaultAITimeout),
		maxTokens: maxTokens,
	}

	if strings.TrimSpace(config.APIKey) == "" {
		service.logger.Debug().Msg("No Anthropic API key configured, Claude provider disabled")
		return service
	}

	service.client = anthropic.NewClient(option.WithAPIKey(config.APIKey))
	service.available = true

	service.logger.Debug().
		Str("model", config.Model).
		Dur("timeout", service.timeout).
		Int("max_tokens", maxTokens).
		Msg("Claude provider initialized")

	return service
}

// Complete sends one prompt to the Messages API and returns the text blocks
// of the response concatenated.
func (s *ClaudeService) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if !s.available {
		return "", models.ErrAIUnavailable
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	start := time.Now()
	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return "", fmt.Errorf("claude completion failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("claude returned no text content")
	}

	s.logger.Debug().
		Int("prompt_length", len(prompt)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(start)).
		Msg("Claude completion finished")

	return response.String(), nil
}

// Available reports whether an API key was configured.
func (s *ClaudeService) Available() bool {
	return s.available
}

// ProviderName identifies the provider in logs and health output.
func (s *ClaudeService) ProviderName() string {
	return string(interfaces.AIProviderClaude)
}
