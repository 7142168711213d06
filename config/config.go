package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AnthropicConfig represents configuration for the Anthropic provider.
type AnthropicConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`  // Anthropic API key
	BaseURL string `yaml:"base_url,omitempty"` // Custom base URL (default: official API)
	Model   string `yaml:"model,omitempty"`    // Default model name
}

// DeepSeekConfig represents configuration for the DeepSeek provider.
type DeepSeekConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`  // DeepSeek API key
	BaseURL string `yaml:"base_url,omitempty"` // Custom base URL (default: official API)
	Model   string `yaml:"model,omitempty"`    // Default model name
}

// OllamaConfig represents configuration for the Ollama provider.
type OllamaConfig struct {
	Host  string `yaml:"host,omitempty"`  // Ollama host (default: "http://localhost:11434")
	Model string `yaml:"model,omitempty"` // Default model name
}

// OpenAIConfig represents configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`      // OpenAI API key
	BaseURL      string `yaml:"base_url,omitempty"`     // Custom base URL (default: official API)
	Model        string `yaml:"model,omitempty"`        // Default model name
	Organization string `yaml:"organization,omitempty"` // Organization ID
}

// Config is the chessinsight configuration file.
type Config struct {
	Provider string `yaml:"provider,omitempty"` // Selected provider: openai, anthropic, deepseek or ollama
	Model    string `yaml:"model,omitempty"`    // Model override for the selected provider

	// Provider configurations
	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Anthropic AnthropicConfig `yaml:"anthropic,omitempty"`
	DeepSeek  DeepSeekConfig  `yaml:"deepseek,omitempty"`
	Ollama    OllamaConfig    `yaml:"ollama,omitempty"`

	RequestTimeout       int    `yaml:"request_timeout,omitempty"`       // Per-request timeout in seconds
	Database             string `yaml:"database,omitempty"`              // Settings database path
	LogFile              string `yaml:"log_file,omitempty"`              // Log file path
	Theme                string `yaml:"theme,omitempty"`                 // Terminal UI theme
	DisableNotifications bool   `yaml:"disable_notifications,omitempty"` // Disable desktop notifications
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Provider: llm.ProviderOpenAI,
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			BaseURL: "https://api.anthropic.com",
			Model:   "claude-haiku-4-5-20251001",
		},
		DeepSeek: DeepSeekConfig{
			BaseURL: "https://api.deepseek.com",
			Model:   "deepseek-chat",
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.2",
		},
		RequestTimeout: 120,
		Database:       "~/.chessinsight/settings.db",
		LogFile:        "~/.chessinsight/chessinsight.log",
		Theme:          "solarized",
	}
}

// GetConfigPath returns the default config file path.
// Can be overridden via CHESSINSIGHT_CONFIG_PATH environment variable.
func GetConfigPath() string {
	if envPath := os.Getenv("CHESSINSIGHT_CONFIG_PATH"); envPath != "" {
		return ExpandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.chessinsight/config.yaml"
	}
	return filepath.Join(homeDir, ".chessinsight", "config.yaml")
}

// GetEnvPath returns the path of the optional .env file that sits next to the
// config file.
func GetEnvPath() string {
	return filepath.Join(filepath.Dir(GetConfigPath()), ".env")
}

// LoadEnvFile loads KEY=value pairs from path into the environment. Variables
// that are already set are left alone. A missing file is not an error.
func LoadEnvFile(path string) error {
	expandedPath := ExpandPath(path)
	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(expandedPath); err != nil {
		return fmt.Errorf("failed to load env file %q: %w", expandedPath, err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// Load loads the configuration file at path and merges it onto the defaults.
// Returns defaults if the file doesn't exist. Environment overrides are
// applied last.
func Load(path string) (*Config, error) {
	defaults := Defaults()

	expandedPath := ExpandPath(path)
	if _, err := os.Stat(expandedPath); err == nil {
		configYAML, err := os.ReadFile(expandedPath) //#nosec 304 -- intentional file read for config
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", expandedPath, err)
		}

		var fileConfig Config
		if err := yaml.Unmarshal(configYAML, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}

		// Merge file config onto defaults
		if err := mergo.Merge(&defaults, fileConfig, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge config: %w", err)
		}
	}

	if envProvider := os.Getenv("CHESSINSIGHT_PROVIDER"); envProvider != "" {
		defaults.Provider = envProvider
	}
	if envTheme := os.Getenv("CHESSINSIGHT_THEME"); envTheme != "" {
		defaults.Theme = envTheme
	}
	if !llm.IsKnownProvider(defaults.Provider) {
		return nil, fmt.Errorf("unknown provider: %s", defaults.Provider)
	}

	return &defaults, nil
}

// Save writes the configuration to path.
func Save(cfg *Config, path string) error {
	expandedPath := ExpandPath(path)

	// Ensure directory exists
	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(expandedPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// APIKey returns the configured credential for a provider, environment
// variables taking precedence over the file.
func (c *Config) APIKey(provider string) string {
	switch provider {
	case llm.ProviderOpenAI:
		key, _, _, _ := LoadOpenAIConfig(c)
		return key
	case llm.ProviderAnthropic:
		key, _, _ := LoadAnthropicConfig(c)
		return key
	case llm.ProviderDeepSeek:
		key, _, _ := LoadDeepSeekConfig(c)
		return key
	default:
		return ""
	}
}
