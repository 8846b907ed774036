package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// NewProvider builds the configured provider. Calls pass through
// timeout, then retry, then logging, so every attempt is logged and the
// deadline covers all of them.
func NewProvider(ctx context.Context, cfg Config, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		// Scripted replies only; nothing to retry or time out.
		return WithLogging(NewMockProvider(), cfg.Provider, logger), nil
	}
	if err != nil {
		return nil, fmt.Errorf("llm: %s provider: %w", cfg.Provider, err)
	}

	return WithTimeout(WithRetry(WithLogging(base, cfg.Provider, logger), cfg.Retry), cfg.Timeout), nil
}
