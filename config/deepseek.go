package config

import (
	"net/http"
	"os"

	"github.com/aschepis/backscratcher/chessinsight/llm"
	llmopenai "github.com/aschepis/backscratcher/chessinsight/llm/openai"
	"github.com/rs/zerolog"
)

// LoadDeepSeekConfig loads DeepSeek configuration from the config.
func LoadDeepSeekConfig(cfg *Config) (apiKey, baseURL, model string) {
	if cfg != nil {
		apiKey = cfg.DeepSeek.APIKey
		baseURL = cfg.DeepSeek.BaseURL
		model = cfg.DeepSeek.Model
	}
	if envAPIKey := os.Getenv("DEEPSEEK_API_KEY"); envAPIKey != "" {
		apiKey = envAPIKey
	}
	return apiKey, baseURL, model
}

// NewDeepSeekClient creates a DeepSeek provider. DeepSeek speaks the OpenAI
// chat-completions protocol, so it reuses the OpenAI client with its own
// base URL, model and provider name.
func NewDeepSeekClient(cfg *Config, model string, httpClient *http.Client, logger zerolog.Logger) (*llmopenai.Client, error) {
	pc, err := llm.DefaultProviderConfig(llm.ProviderDeepSeek)
	if err != nil {
		return nil, err
	}
	_, baseURL, cfgModel := LoadDeepSeekConfig(cfg)
	if baseURL != "" {
		pc.BaseURL = baseURL
	}
	pc = pc.WithModel(cfgModel).WithModel(model)
	return llmopenai.NewClient(pc, httpClient, logger), nil
}
