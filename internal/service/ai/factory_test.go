package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/startup-mentor/backend/internal/config"
)

func TestNewTransportSelectsBackend(t *testing.T) {
	transport, err := NewTransport(context.Background(), config.AIConfig{Backend: config.BackendScripted}, nil)
	require.NoError(t, err)
	require.Equal(t, "scripted", transport.Name())

	transport, err = NewTransport(context.Background(), config.AIConfig{
		Backend: config.BackendOpenAI,
		OpenAI:  config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "openai", transport.Name())

	transport, err = NewTransport(context.Background(), config.AIConfig{
		Backend:   config.BackendAnthropic,
		Anthropic: config.AnthropicConfig{APIKey: "key", Model: "claude-3-5-haiku-latest", MaxTokens: 256},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "anthropic", transport.Name())
}

func TestNewTransportErrors(t *testing.T) {
	_, err := NewTransport(context.Background(), config.AIConfig{Backend: "carrier-pigeon"}, nil)
	require.Error(t, err)

	_, err = NewTransport(context.Background(), config.AIConfig{Backend: config.BackendArk}, nil)
	require.Error(t, err)
}
