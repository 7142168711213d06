package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aschepis/backscratcher/chessinsight/llm"
	llmopenai "github.com/aschepis/backscratcher/chessinsight/llm/openai"
	"github.com/rs/zerolog"
)

// clearEnv isolates a test from provider variables set in the environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "OPENAI_ORG_ID",
		"ANTHROPIC_API_KEY", "DEEPSEEK_API_KEY", "OLLAMA_HOST", "OLLAMA_MODEL",
		"CHESSINSIGHT_PROVIDER", "CHESSINSIGHT_CONFIG_PATH", "CHESSINSIGHT_THEME",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != llm.ProviderOpenAI {
		t.Errorf("Expected default provider openai, got %q", cfg.Provider)
	}
	if cfg.Ollama.Host != "http://localhost:11434" {
		t.Errorf("Unexpected ollama host %q", cfg.Ollama.Host)
	}
	if cfg.Timeout() != 120*time.Second {
		t.Errorf("Unexpected timeout %v", cfg.Timeout())
	}
}

func TestLoad_MergesFileOntoDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
provider: anthropic
anthropic:
  api_key: sk-ant-file
  model: claude-opus-4-6
request_timeout: 30
disable_notifications: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != llm.ProviderAnthropic {
		t.Errorf("Expected anthropic, got %q", cfg.Provider)
	}
	if cfg.Anthropic.Model != "claude-opus-4-6" {
		t.Errorf("Expected model from file, got %q", cfg.Anthropic.Model)
	}
	if cfg.Anthropic.BaseURL != "https://api.anthropic.com" {
		t.Errorf("Expected default base URL to survive merge, got %q", cfg.Anthropic.BaseURL)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("Expected untouched section to keep defaults, got %q", cfg.OpenAI.Model)
	}
	if cfg.Timeout() != 30*time.Second || !cfg.DisableNotifications {
		t.Errorf("Unexpected timeout/notifications: %v / %v", cfg.Timeout(), cfg.DisableNotifications)
	}
	if cfg.APIKey(llm.ProviderAnthropic) != "sk-ant-file" {
		t.Errorf("Unexpected api key %q", cfg.APIKey(llm.ProviderAnthropic))
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "openai:\n  api_key: sk-file\n")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("DEEPSEEK_API_KEY", "ds-env")
	t.Setenv("CHESSINSIGHT_PROVIDER", "deepseek")
	t.Setenv("CHESSINSIGHT_THEME", "walnut")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != llm.ProviderDeepSeek {
		t.Errorf("Expected provider from env, got %q", cfg.Provider)
	}
	if cfg.Theme != "walnut" {
		t.Errorf("Expected theme from env, got %q", cfg.Theme)
	}
	if cfg.APIKey(llm.ProviderOpenAI) != "sk-env" {
		t.Errorf("Expected env key to win, got %q", cfg.APIKey(llm.ProviderOpenAI))
	}
	if cfg.APIKey(llm.ProviderDeepSeek) != "ds-env" {
		t.Errorf("Unexpected deepseek key %q", cfg.APIKey(llm.ProviderDeepSeek))
	}
	if cfg.APIKey(llm.ProviderOllama) != "" {
		t.Error("Ollama has no credential")
	}
}

func TestLoad_UnknownProvider(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "provider: gemini\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "provider: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Expected parse error")
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Provider = llm.ProviderOllama
	cfg.Ollama.Model = "qwen2.5:7b"

	if err := Save(&cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != llm.ProviderOllama || loaded.Ollama.Model != "qwen2.5:7b" {
		t.Errorf("Unexpected loaded config %+v", loaded)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	t.Setenv("CHESSINSIGHT_CONFIG_PATH", "/tmp/custom.yaml")
	if got := GetConfigPath(); got != "/tmp/custom.yaml" {
		t.Errorf("Expected env override, got %q", got)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// clearEnv leaves the variables set to ""; unset the ones the file provides
	// so they count as missing. t.Setenv restores them afterwards.
	_ = os.Unsetenv("ANTHROPIC_API_KEY")
	_ = os.Unsetenv("CHESSINSIGHT_THEME")
	t.Setenv("OPENAI_API_KEY", "sk-shell")

	path := filepath.Join(t.TempDir(), ".env")
	content := "ANTHROPIC_API_KEY=sk-ant-dotenv\nCHESSINSIGHT_THEME=gruvbox\nOPENAI_API_KEY=sk-dotenv\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey(llm.ProviderAnthropic) != "sk-ant-dotenv" {
		t.Errorf("Expected key from env file, got %q", cfg.APIKey(llm.ProviderAnthropic))
	}
	if cfg.Theme != "gruvbox" {
		t.Errorf("Expected theme from env file, got %q", cfg.Theme)
	}
	if cfg.APIKey(llm.ProviderOpenAI) != "sk-shell" {
		t.Errorf("Existing variables must win over the env file, got %q", cfg.APIKey(llm.ProviderOpenAI))
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("Missing env file should be ignored, got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	clearEnv(t)
	cfg := Defaults()

	tests := []struct {
		provider string
		override string
		name     string
		model    string
	}{
		{llm.ProviderOpenAI, "", "OpenAI", "gpt-4o-mini"},
		{llm.ProviderOpenAI, "gpt-4.1", "OpenAI", "gpt-4.1"},
		{llm.ProviderAnthropic, "", "Anthropic", "claude-haiku-4-5-20251001"},
		{llm.ProviderDeepSeek, "", "DeepSeek", "deepseek-chat"},
		{llm.ProviderOllama, "mistral", "Ollama", "mistral"},
	}
	for _, tt := range tests {
		t.Run(tt.provider+"_"+tt.model, func(t *testing.T) {
			p, err := NewProvider(&cfg, tt.provider, tt.override, zerolog.Nop())
			if err != nil {
				t.Fatalf("NewProvider failed: %v", err)
			}
			info := p.Config()
			if info.ID != tt.provider || info.Name != tt.name || info.Model != tt.model {
				t.Errorf("Unexpected provider config %+v", info)
			}
		})
	}
}

func TestNewProvider_DeepSeekReusesOpenAIClient(t *testing.T) {
	clearEnv(t)
	cfg := Defaults()
	p, err := NewProvider(&cfg, llm.ProviderDeepSeek, "", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if _, ok := p.(*llmopenai.Client); !ok {
		t.Errorf("Expected OpenAI-compatible client, got %T", p)
	}
	if p.Config().BaseURL != "https://api.deepseek.com" || p.Config().ListModels {
		t.Errorf("Unexpected deepseek config %+v", p.Config())
	}
}

func TestNewProvider_SelectsConfiguredProvider(t *testing.T) {
	clearEnv(t)
	cfg := Defaults()
	cfg.Provider = llm.ProviderAnthropic
	cfg.Model = "claude-sonnet-4-5-20250929"

	p, err := NewProvider(&cfg, "", "", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Config().ID != llm.ProviderAnthropic || p.Config().Model != "claude-sonnet-4-5-20250929" {
		t.Errorf("Unexpected provider config %+v", p.Config())
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider(nil, "gemini", "", zerolog.Nop()); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}
