package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// envPrefix namespaces the explicit provider settings.
const envPrefix = "MARUBATSU_"

// Config selects and configures the explanation provider.
type Config struct {
	// Provider is "anthropic", "openai", "gemini", "openrouter" or "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one explanation, retries included.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// providerFields points at the three settings every real provider has.
type providerFields struct {
	name                string
	key, model, baseURL *string
}

// fields lists the providers in discovery order.
func (c *Config) fields() []providerFields {
	return []providerFields{
		{"gemini", &c.Gemini.APIKey, &c.Gemini.Model, &c.Gemini.BaseURL},
		{"openai", &c.OpenAI.APIKey, &c.OpenAI.Model, &c.OpenAI.BaseURL},
		{"anthropic", &c.Anthropic.APIKey, &c.Anthropic.Model, &c.Anthropic.BaseURL},
		{"openrouter", &c.OpenRouter.APIKey, &c.OpenRouter.Model, &c.OpenRouter.BaseURL},
	}
}

// DefaultConfig picks cheap, fast models. Explanations are a sentence or
// two, so the time and retry budget is small.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2,
		},
		Timeout: 20 * time.Second,
	}
}

func envName(provider, setting string) string {
	return envPrefix + strings.ToUpper(provider) + "_" + setting
}

// ConfigFromEnv overlays MARUBATSU_<PROVIDER>_{API_KEY,MODEL,BASE_URL},
// MARUBATSU_LLM_PROVIDER and MARUBATSU_LLM_TIMEOUT on the defaults.
// Empty variables are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	set := func(dst *string, name string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(&cfg.Provider, envPrefix+"LLM_PROVIDER")
	for _, f := range cfg.fields() {
		set(f.key, envName(f.name, "API_KEY"))
		set(f.model, envName(f.name, "MODEL"))
		set(f.baseURL, envName(f.name, "BASE_URL"))
	}
	if v := os.Getenv(envPrefix + "LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}

// DiscoverConfig uses the first of GEMINI_API_KEY, OPENAI_API_KEY,
// ANTHROPIC_API_KEY and OPENROUTER_API_KEY that is set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, f := range cfg.fields() {
		if k := os.Getenv(strings.ToUpper(f.name) + "_API_KEY"); k != "" {
			cfg.Provider = f.name
			*f.key = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Resolve prefers a usable MARUBATSU_* setup and falls back to
// DiscoverConfig. ok is false when no provider has a key.
func Resolve() (Config, bool) {
	if cfg := ConfigFromEnv(); cfg.Validate() == nil {
		return cfg, true
	}
	return DiscoverConfig()
}

// Validate reports a missing API key for the selected provider.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	for _, f := range c.fields() {
		if f.name != c.Provider {
			continue
		}
		if *f.key == "" {
			return fmt.Errorf("%s is required for the %s provider", envName(f.name, "API_KEY"), f.name)
		}
		return nil
	}
	return fmt.Errorf("unknown llm provider %q", c.Provider)
}
