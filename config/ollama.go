package config

import (
	"net/http"
	"os"

	"github.com/aschepis/backscratcher/chessinsight/llm"
	llmollama "github.com/aschepis/backscratcher/chessinsight/llm/ollama"
	"github.com/rs/zerolog"
)

// LoadOllamaConfig loads Ollama configuration from the config.
// It returns the host and model to use for creating an Ollama client.
func LoadOllamaConfig(cfg *Config) (host, model string) {
	if cfg != nil {
		host = cfg.Ollama.Host
		model = cfg.Ollama.Model
	}

	// Apply environment variable overrides
	if envHost := getOllamaHostFromEnv(); envHost != "" {
		host = envHost
	}
	if envModel := getOllamaModelFromEnv(); envModel != "" {
		model = envModel
	}

	// Set defaults if still empty
	if host == "" {
		host = "http://localhost:11434"
	}

	return host, model
}

// NewOllamaClient creates an Ollama provider from the configuration.
func NewOllamaClient(cfg *Config, model string, httpClient *http.Client, logger zerolog.Logger) (*llmollama.Client, error) {
	pc, err := llm.DefaultProviderConfig(llm.ProviderOllama)
	if err != nil {
		return nil, err
	}
	host, cfgModel := LoadOllamaConfig(cfg)
	pc.BaseURL = host
	pc = pc.WithModel(cfgModel).WithModel(model)
	return llmollama.NewClient(pc, httpClient, logger)
}

// getOllamaHostFromEnv gets the Ollama host from environment variable.
func getOllamaHostFromEnv() string {
	return os.Getenv("OLLAMA_HOST")
}

// getOllamaModelFromEnv gets the Ollama model from environment variable.
func getOllamaModelFromEnv() string {
	return os.Getenv("OLLAMA_MODEL")
}
