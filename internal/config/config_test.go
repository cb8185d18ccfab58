package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearAIEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MENTOR_BACKEND", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model",
		"GEMINI_API_KEY", "API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"ANTHROPIC_MAX_TOKENS", "ANTHROPIC_DOSSIER_MAX_TOKENS",
		"MENTOR_TURN_TIMEOUT", "SCRIPTED_FRAGMENT_DELAY", "LOG_LEVEL", "LOG_FORMAT", "PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsToScriptedBackend(t *testing.T) {
	clearAIEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, BackendScripted, cfg.AI.Backend)
	require.Equal(t, 2*time.Minute, cfg.AI.TurnTimeout)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "gemini-3-flash-preview", cfg.AI.Gemini.Model)
	require.Equal(t, 1024, cfg.AI.Anthropic.MaxTokens)
	require.Equal(t, 2048, cfg.AI.Anthropic.DossierMaxTokens)
}

func TestLoadAnthropicTokenLimits(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("ANTHROPIC_MAX_TOKENS", "512")
	t.Setenv("ANTHROPIC_DOSSIER_MAX_TOKENS", "4096")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 512, cfg.AI.Anthropic.MaxTokens)
	require.Equal(t, 4096, cfg.AI.Anthropic.DossierMaxTokens)
}

func TestLoadDetectsBackendFromCredentials(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("API_KEY", "gemini-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendGemini, cfg.AI.Backend)
	require.Equal(t, "gemini-secret", cfg.AI.Gemini.APIKey)
}

func TestLoadArkTakesPrecedence(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("ARK_API_KEY", "ark-secret")
	t.Setenv("Model", "ep-123")
	t.Setenv("OPENAI_API_KEY", "openai-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendArk, cfg.AI.Backend)
}

func TestLoadExplicitBackend(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("MENTOR_BACKEND", "Anthropic")
	t.Setenv("MENTOR_TURN_TIMEOUT", "15s")
	t.Setenv("PORT", "127.0.0.1:9000")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, BackendAnthropic, cfg.AI.Backend)
	require.Equal(t, 15*time.Second, cfg.AI.TurnTimeout)
	require.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"backend":    {"MENTOR_BACKEND", "telepathy"},
		"timeout":    {"MENTOR_TURN_TIMEOUT", "soon"},
		"negative":   {"SCRIPTED_FRAGMENT_DELAY", "-1s"},
		"log level":  {"LOG_LEVEL", "loud"},
		"port":       {"PORT", "80 80"},
		"dossier":    {"ANTHROPIC_DOSSIER_MAX_TOKENS", "0"},
		"max tokens": {"ANTHROPIC_MAX_TOKENS", "lots"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearAIEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			require.Error(t, err)
		})
	}
}
