package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stan0424/calendar-app/internal/profile"
)

func TestNewConfigFromProfileDisabled(t *testing.T) {
	cfg := NewConfigFromProfile(&profile.Profile{})

	assert.False(t, cfg.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestNewConfigFromProfileOpenAI(t *testing.T) {
	cfg := NewConfigFromProfile(&profile.Profile{
		AIProvider:    "openai",
		OpenAIAPIKey:  "ok",
		OpenAIBaseURL: "https://api.openai.com/v1",
	})

	require.True(t, cfg.Enabled)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "ok", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.NoError(t, cfg.Validate())
}

func TestNewConfigFromProfileGemini(t *testing.T) {
	cfg := NewConfigFromProfile(&profile.Profile{
		AIProvider:    "gemini",
		GeminiAPIKey:  "gk",
		GeminiBaseURL: "https://generativelanguage.googleapis.com/v1beta/openai",
	})

	require.True(t, cfg.Enabled)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gk", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsMissingKey(t *testing.T) {
	cfg := &Config{Enabled: true, LLM: LLMConfig{Provider: "openai"}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := &Config{Enabled: true, LLM: LLMConfig{Provider: "ollama", APIKey: "x"}}
	assert.Error(t, cfg.Validate())
}
