package ai

import (
	"time"

	"github.com/pkg/errors"

	"github.com/stan0424/calendar-app/internal/profile"
)

// Config represents AI assistant configuration.
type Config struct {
	Enabled bool

	LLM LLMConfig
}

// LLMConfig represents LLM configuration. Both supported providers speak
// the OpenAI chat-completion dialect, so the provider switch only selects
// credentials and endpoint.
type LLMConfig struct {
	Provider    string // openai, gemini
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int           // default: 2048
	Temperature float32       // default: 0.2
	MaxRetries  int           // default: 3
	Timeout     time.Duration // default: 30s
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.IsAIEnabled(),
	}

	if !cfg.Enabled {
		return cfg
	}

	cfg.LLM = LLMConfig{
		Provider:    p.AIProvider,
		Model:       p.AIModel,
		MaxTokens:   2048,
		Temperature: 0.2,
		MaxRetries:  3,
		Timeout:     30 * time.Second,
	}

	switch p.AIProvider {
	case "gemini":
		cfg.LLM.APIKey = p.GeminiAPIKey
		cfg.LLM.BaseURL = p.GeminiBaseURL
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = "gemini-2.0-flash"
		}
	default:
		cfg.LLM.Provider = "openai"
		cfg.LLM.APIKey = p.OpenAIAPIKey
		cfg.LLM.BaseURL = p.OpenAIBaseURL
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = "gpt-4o-mini"
		}
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.LLM.Provider != "openai" && c.LLM.Provider != "gemini" {
		return errors.Errorf("unsupported LLM provider: %s", c.LLM.Provider)
	}

	if c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}

	return nil
}
