package llm

import (
	"testing"
)

func TestDefaultProviderConfig(t *testing.T) {
	cfg, err := DefaultProviderConfig(ProviderDeepSeek)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Name != "DeepSeek" || cfg.Model != "deepseek-chat" {
		t.Errorf("Unexpected deepseek config: %+v", cfg)
	}
	if cfg.ListModels {
		t.Error("deepseek should validate with a completion, not a models listing")
	}

	cfg, err = DefaultProviderConfig(ProviderOpenAI)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !cfg.ListModels {
		t.Error("openai should validate with the models listing")
	}

	if _, err := DefaultProviderConfig("gemini"); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestProviderConfig_WithModel(t *testing.T) {
	cfg, _ := DefaultProviderConfig(ProviderAnthropic)
	if got := cfg.WithModel("").Model; got != "claude-haiku-4-5-20251001" {
		t.Errorf("Expected default model to be kept, got %q", got)
	}
	if got := cfg.WithModel("claude-opus-4-6").Model; got != "claude-opus-4-6" {
		t.Errorf("Expected override, got %q", got)
	}
	if cfg.Model != "claude-haiku-4-5-20251001" {
		t.Error("WithModel must not mutate the receiver")
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		want     string
	}{
		{ProviderOpenAI, "gpt-4o", "gpt-4o"},
		{ProviderOpenAI, "claude-opus-4-6", "gpt-4o-mini"},
		{ProviderOpenAI, "", "gpt-4o-mini"},
		{ProviderAnthropic, "claude-sonnet-4-5-20250929", "claude-sonnet-4-5-20250929"},
		{ProviderDeepSeek, "gpt-4o", "deepseek-chat"},
		{ProviderOllama, "qwen2.5:7b", "qwen2.5:7b"},
		{ProviderOllama, "", "llama3.2"},
	}
	for _, tt := range tests {
		if got := ResolveModel(tt.provider, tt.model); got != tt.want {
			t.Errorf("ResolveModel(%q, %q) = %q, want %q", tt.provider, tt.model, got, tt.want)
		}
	}
}

func TestProviders(t *testing.T) {
	providers := Providers()
	if len(providers) != 4 || providers[0] != ProviderOpenAI {
		t.Errorf("Unexpected providers: %v", providers)
	}
	providers[0] = "mutated"
	if Providers()[0] != ProviderOpenAI {
		t.Error("Providers must return a copy")
	}
	if !IsKnownProvider(ProviderOllama) || IsKnownProvider("mutated") {
		t.Error("IsKnownProvider returned unexpected result")
	}
	if len(Models(ProviderOllama)) != 0 {
		t.Error("ollama has no fixed model catalog")
	}
}
