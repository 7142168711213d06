package config

import (
	"fmt"
	"net/http"

	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/rs/zerolog"
)

// NewProvider selects and builds the provider adapter for providerID. An
// empty providerID selects the configured provider. modelOverride, when set,
// wins over the configured model.
func NewProvider(cfg *Config, providerID, modelOverride string, logger zerolog.Logger) (llm.Provider, error) {
	if cfg == nil {
		defaults := Defaults()
		cfg = &defaults
	}
	if providerID == "" {
		providerID = cfg.Provider
	}
	model := modelOverride
	if model == "" && providerID == cfg.Provider {
		model = cfg.Model
	}

	httpClient := &http.Client{Timeout: cfg.Timeout()}

	logger.Debug().
		Str("provider", providerID).
		Str("model_override", model).
		Msg("Creating provider adapter")

	switch providerID {
	case llm.ProviderOpenAI:
		c, err := NewOpenAIClient(cfg, model, httpClient, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai provider: %w", err)
		}
		return c, nil
	case llm.ProviderAnthropic:
		c, err := NewAnthropicClient(cfg, model, httpClient, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic provider: %w", err)
		}
		return c, nil
	case llm.ProviderDeepSeek:
		c, err := NewDeepSeekClient(cfg, model, httpClient, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepseek provider: %w", err)
		}
		return c, nil
	case llm.ProviderOllama:
		c, err := NewOllamaClient(cfg, model, httpClient, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama provider: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", providerID)
	}
}
