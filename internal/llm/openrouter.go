package llm

import (
	"cmp"
	"errors"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider is the OpenAI client aimed at OpenRouter. Model IDs
// are vendor-prefixed ("google/gemini-2.0-flash-001") and sent as given.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: API key is required")
	}
	base := cmp.Or(cfg.BaseURL, defaultOpenRouterBaseURL)
	return &OpenRouterProvider{OpenAIProvider: newOpenAICompatible(cfg.APIKey, base, cfg.Model)}, nil
}
