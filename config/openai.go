package config

import (
	"net/http"
	"os"

	"github.com/aschepis/backscratcher/chessinsight/llm"
	llmopenai "github.com/aschepis/backscratcher/chessinsight/llm/openai"
	"github.com/rs/zerolog"
)

// LoadOpenAIConfig loads OpenAI configuration from the config.
// It returns the API key, base URL, model, and organization to use for creating an OpenAI client.
func LoadOpenAIConfig(cfg *Config) (apiKey, baseURL, model, organization string) {
	if cfg != nil {
		apiKey = cfg.OpenAI.APIKey
		baseURL = cfg.OpenAI.BaseURL
		model = cfg.OpenAI.Model
		organization = cfg.OpenAI.Organization
	}

	// Apply environment variable overrides
	if envAPIKey := getOpenAIAPIKeyFromEnv(); envAPIKey != "" {
		apiKey = envAPIKey
	}
	if envBaseURL := getOpenAIBaseURLFromEnv(); envBaseURL != "" {
		baseURL = envBaseURL
	}
	if envModel := getOpenAIModelFromEnv(); envModel != "" {
		model = envModel
	}
	if envOrg := getOpenAIOrgFromEnv(); envOrg != "" {
		organization = envOrg
	}

	return apiKey, baseURL, model, organization
}

// NewOpenAIClient creates an OpenAI provider from the configuration.
func NewOpenAIClient(cfg *Config, model string, httpClient *http.Client, logger zerolog.Logger) (*llmopenai.Client, error) {
	pc, err := llm.DefaultProviderConfig(llm.ProviderOpenAI)
	if err != nil {
		return nil, err
	}
	_, baseURL, cfgModel, organization := LoadOpenAIConfig(cfg)
	if baseURL != "" {
		pc.BaseURL = baseURL
	}
	pc.Organization = organization
	pc = pc.WithModel(cfgModel).WithModel(model)
	return llmopenai.NewClient(pc, httpClient, logger), nil
}

// getOpenAIAPIKeyFromEnv gets the OpenAI API key from environment variable.
func getOpenAIAPIKeyFromEnv() string {
	return os.Getenv("OPENAI_API_KEY")
}

// getOpenAIBaseURLFromEnv gets the OpenAI base URL from environment variable.
func getOpenAIBaseURLFromEnv() string {
	return os.Getenv("OPENAI_BASE_URL")
}

// getOpenAIModelFromEnv gets the OpenAI model from environment variable.
func getOpenAIModelFromEnv() string {
	return os.Getenv("OPENAI_MODEL")
}

// getOpenAIOrgFromEnv gets the OpenAI organization ID from environment variable.
func getOpenAIOrgFromEnv() string {
	return os.Getenv("OPENAI_ORG_ID")
}
