package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zhouzirui/startup-mentor/backend/internal/config"
)

// NewTransport builds the backend selected in configuration. Credentials are
// taken from cfg only.
func NewTransport(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (Transport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("backend", cfg.Backend))

	switch cfg.Backend {
	case config.BackendArk:
		chatModel, err := cfg.Ark.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return NewArkTransport(ctx, chatModel, logger)
	case config.BackendGemini:
		return NewGeminiTransport(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Temperature, logger)
	case config.BackendOpenAI:
		return NewOpenAITransport(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, logger)
	case config.BackendAnthropic:
		return NewAnthropicTransport(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, cfg.Anthropic.DossierMaxTokens, logger)
	case config.BackendScripted, "":
		return NewScriptedTransport(cfg.Scripted.FragmentDelay), nil
	default:
		return nil, fmt.Errorf("unknown completion backend %q", cfg.Backend)
	}
}
