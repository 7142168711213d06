package config

import (
	"net/http"
	"os"

	"github.com/aschepis/backscratcher/chessinsight/llm"
	llmanthropic "github.com/aschepis/backscratcher/chessinsight/llm/anthropic"
	"github.com/rs/zerolog"
)

// LoadAnthropicConfig loads Anthropic configuration from the config.
// It returns the API key, base URL and model to use for creating an Anthropic client.
func LoadAnthropicConfig(cfg *Config) (apiKey, baseURL, model string) {
	if cfg != nil {
		apiKey = cfg.Anthropic.APIKey
		baseURL = cfg.Anthropic.BaseURL
		model = cfg.Anthropic.Model
	}
	if envAPIKey := os.Getenv("ANTHROPIC_API_KEY"); envAPIKey != "" {
		apiKey = envAPIKey
	}
	return apiKey, baseURL, model
}

// NewAnthropicClient creates an Anthropic provider from the configuration.
func NewAnthropicClient(cfg *Config, model string, httpClient *http.Client, logger zerolog.Logger) (*llmanthropic.Client, error) {
	pc, err := llm.DefaultProviderConfig(llm.ProviderAnthropic)
	if err != nil {
		return nil, err
	}
	_, baseURL, cfgModel := LoadAnthropicConfig(cfg)
	if baseURL != "" {
		pc.BaseURL = baseURL
	}
	pc = pc.WithModel(cfgModel).WithModel(model)
	return llmanthropic.NewClient(pc, httpClient, logger), nil
}
