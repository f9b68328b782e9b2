package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderAzure      = "azure"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which backend to use; one of the Provider* names.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Azure      AzureConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single analysis call, retries included. Default: 30s.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Any OpenAI-compatible endpoint.
}

// AzureConfig holds Azure OpenAI configuration. Requests are routed to
// Deployment; Model is only used for reporting and pricing.
type AzureConfig struct {
	APIKey     string
	Endpoint   string // e.g. https://my-resource.openai.azure.com
	APIVersion string // Default: "2024-10-21"; older versions reject max_completion_tokens
	Deployment string
	Model      string // Default: "gpt-4o-mini"
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderAnthropic,
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Azure: AzureConfig{
			APIVersion: "2024-10-21",
			Model:      "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from FEEDSIGHT_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	setString(&cfg.Provider, "FEEDSIGHT_LLM_PROVIDER")

	setString(&cfg.Anthropic.APIKey, "FEEDSIGHT_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "FEEDSIGHT_ANTHROPIC_MODEL")

	setString(&cfg.OpenAI.APIKey, "FEEDSIGHT_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "FEEDSIGHT_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "FEEDSIGHT_OPENAI_BASE_URL")

	setString(&cfg.Azure.APIKey, "FEEDSIGHT_AZURE_API_KEY")
	setString(&cfg.Azure.Endpoint, "FEEDSIGHT_AZURE_ENDPOINT")
	setString(&cfg.Azure.APIVersion, "FEEDSIGHT_AZURE_API_VERSION")
	setString(&cfg.Azure.Deployment, "FEEDSIGHT_AZURE_DEPLOYMENT")
	setString(&cfg.Azure.Model, "FEEDSIGHT_AZURE_MODEL")

	setString(&cfg.Gemini.APIKey, "FEEDSIGHT_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "FEEDSIGHT_GEMINI_MODEL")

	setString(&cfg.OpenRouter.APIKey, "FEEDSIGHT_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "FEEDSIGHT_OPENROUTER_MODEL")

	if v := os.Getenv("FEEDSIGHT_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("FEEDSIGHT_LLM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retry.MaxAttempts = n
		}
	}

	return cfg
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig probes the vendors' standard env vars in priority order
// (Azure, Gemini, OpenAI, Anthropic, OpenRouter) and returns a Config for
// the first provider found. Returns (Config{}, false) if none is found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("AZURE_OPENAI_API_KEY"); k != "" {
		if e := os.Getenv("AZURE_OPENAI_ENDPOINT"); e != "" {
			cfg.Provider = ProviderAzure
			cfg.Azure.APIKey = k
			cfg.Azure.Endpoint = e
			setString(&cfg.Azure.APIVersion, "AZURE_OPENAI_VERSION")
			setString(&cfg.Azure.Deployment, "AZURE_OPENAI_DEPLOYMENT")
			if cfg.Azure.Deployment == "" {
				cfg.Azure.Deployment = cfg.Azure.Model
			}
			return cfg, true
		}
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenRouter
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// ResolveConfig returns the explicit FEEDSIGHT_* configuration when it
// validates, and otherwise falls back to DiscoverConfig.
func ResolveConfig() (Config, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err == nil {
		return cfg, nil
	} else if os.Getenv("FEEDSIGHT_LLM_PROVIDER") != "" {
		return Config{}, err
	}

	discovered, ok := DiscoverConfig()
	if !ok {
		return Config{}, ErrNotConfigured
	}
	discovered.Timeout = cfg.Timeout
	discovered.Retry = cfg.Retry
	return discovered, nil
}

// Validate checks that the selected provider has what it needs to connect.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("FEEDSIGHT_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("FEEDSIGHT_OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderAzure:
		if c.Azure.APIKey == "" {
			return fmt.Errorf("FEEDSIGHT_AZURE_API_KEY is required for the azure provider")
		}
		if c.Azure.Endpoint == "" {
			return fmt.Errorf("FEEDSIGHT_AZURE_ENDPOINT is required for the azure provider")
		}
		if c.Azure.Deployment == "" {
			return fmt.Errorf("FEEDSIGHT_AZURE_DEPLOYMENT is required for the azure provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("FEEDSIGHT_GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("FEEDSIGHT_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
