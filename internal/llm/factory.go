package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/feedsight/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped as
// caller → retry → logging → base. repo may be nil to skip event recording.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderAzure:
		base, err = NewAzureProvider(cfg.Azure)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider, repo, logger)
	return WithRetry(logged, cfg.Retry, logger), nil
}

// NewProviderFromEnv resolves configuration from the environment and
// builds the provider. It returns ErrNotConfigured when no provider is
// set up, so callers can degrade to rules-only analysis.
func NewProviderFromEnv(ctx context.Context, repo store.EventRepo, logger *slog.Logger) (Provider, Config, error) {
	cfg, err := ResolveConfig()
	if err != nil {
		return nil, Config{}, err
	}
	p, err := NewProvider(ctx, cfg, repo, logger)
	if err != nil {
		return nil, Config{}, err
	}
	return p, cfg, nil
}
