package llm

import (
	"fmt"

	"github.com/samber/lo"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderDeepSeek  = "deepseek"
	ProviderOllama    = "ollama"
)

// ProviderConfig holds the immutable per-backend settings of an adapter.
type ProviderConfig struct {
	ID           string
	Name         string // Human-readable provider name used in messages
	Model        string
	BaseURL      string
	Organization string // OpenAI only
	ListModels   bool   // Validate credentials with the models listing endpoint
	RequiresKey  bool
}

// WithModel returns a copy of the config using model, or the current model
// when model is empty.
func (c ProviderConfig) WithModel(model string) ProviderConfig {
	if model != "" {
		c.Model = model
	}
	return c
}

// ModelOption is a selectable model for a provider.
type ModelOption struct {
	Value string
	Label string
}

var providerOrder = []string{ProviderOpenAI, ProviderAnthropic, ProviderDeepSeek, ProviderOllama}

var defaultConfigs = map[string]ProviderConfig{
	ProviderOpenAI: {
		ID:          ProviderOpenAI,
		Name:        "OpenAI",
		Model:       "gpt-4o-mini",
		BaseURL:     "https://api.openai.com/v1",
		ListModels:  true,
		RequiresKey: true,
	},
	ProviderAnthropic: {
		ID:          ProviderAnthropic,
		Name:        "Anthropic",
		Model:       "claude-haiku-4-5-20251001",
		BaseURL:     "https://api.anthropic.com",
		RequiresKey: true,
	},
	ProviderDeepSeek: {
		ID:          ProviderDeepSeek,
		Name:        "DeepSeek",
		Model:       "deepseek-chat",
		BaseURL:     "https://api.deepseek.com",
		RequiresKey: true,
	},
	ProviderOllama: {
		ID:         ProviderOllama,
		Name:       "Ollama",
		Model:      "llama3.2",
		BaseURL:    "http://localhost:11434",
		ListModels: true,
	},
}

var catalog = map[string][]ModelOption{
	ProviderOpenAI: {
		{Value: "gpt-4o-mini", Label: "GPT-4o Mini"},
		{Value: "gpt-4o", Label: "GPT-4o"},
		{Value: "gpt-4.1-nano", Label: "GPT-4.1 Nano"},
		{Value: "gpt-4.1-mini", Label: "GPT-4.1 Mini"},
		{Value: "gpt-4.1", Label: "GPT-4.1"},
		{Value: "gpt-5", Label: "GPT-5"},
		{Value: "gpt-5.1", Label: "GPT-5.1"},
		{Value: "gpt-5.2", Label: "GPT-5.2"},
	},
	ProviderAnthropic: {
		{Value: "claude-haiku-4-5-20251001", Label: "Claude 4.5 Haiku"},
		{Value: "claude-sonnet-4-5-20250929", Label: "Claude 4.5 Sonnet"},
		{Value: "claude-opus-4-6", Label: "Claude Opus"},
	},
	ProviderDeepSeek: {
		{Value: "deepseek-chat", Label: "DeepSeek Chat"},
	},
}

// Providers returns the known provider identifiers in display order.
func Providers() []string {
	return append([]string(nil), providerOrder...)
}

// IsKnownProvider checks if id names a built-in provider.
func IsKnownProvider(id string) bool {
	_, ok := defaultConfigs[id]
	return ok
}

// DefaultProviderConfig returns the built-in configuration for a provider.
func DefaultProviderConfig(id string) (ProviderConfig, error) {
	cfg, ok := defaultConfigs[id]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("unknown provider: %s", id)
	}
	return cfg, nil
}

// Models returns the selectable models for a provider. Ollama serves whatever
// is pulled locally, so it has no fixed catalog.
func Models(provider string) []ModelOption {
	return append([]ModelOption(nil), catalog[provider]...)
}

// ResolveModel returns model when the provider offers it, otherwise the
// provider's default model.
func ResolveModel(provider, model string) string {
	cfg, ok := defaultConfigs[provider]
	if !ok {
		return model
	}
	if model == "" {
		return cfg.Model
	}
	options, fixed := catalog[provider]
	if !fixed {
		return model
	}
	if lo.ContainsBy(options, func(o ModelOption) bool { return o.Value == model }) {
		return model
	}
	return cfg.Model
}
