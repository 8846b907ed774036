package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingProvider_Success(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"explanation":"x","confidence":80}`),
		Usage:   Usage{InputTokens: 120, OutputTokens: 40},
	})
	p := WithLogging(mock, "mock", zap.New(core))

	ctx := WithQuestion(WithPurpose(context.Background(), "explain"), "1st-2-14")
	resp, err := p.Generate(ctx, Request{Schema: explanationTestSchema()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"explanation":"x","confidence":80}`, string(resp.Content))

	entries := logs.FilterMessage("llm request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "mock", fields["provider"])
	assert.Equal(t, "explain", fields["purpose"])
	assert.Equal(t, "1st-2-14", fields["question_id"])
	assert.Equal(t, "test-explanation", fields["schema"])
	assert.EqualValues(t, 120, fields["input_tokens"])
	assert.EqualValues(t, 40, fields["output_tokens"])
	assert.NotContains(t, fields, "cost_usd", "mock model has no price")
}

func TestLoggingProvider_Failure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{RetryAfter: time.Second}})
	p := WithLogging(mock, "mock", zap.New(core))

	_, err := p.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	require.True(t, errors.As(err, &rl))

	entries := logs.FilterMessage("llm request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "untagged", entries[0].ContextMap()["purpose"])
	assert.NotContains(t, entries[0].ContextMap(), "question_id")
}

func TestLoggingProvider_NilLogger(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, "mock", nil)
	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	require.NotNil(t, c)
	assert.InDelta(t, 0.15+0.6, c.Cost(1_000_000, 1_000_000), 1e-9)
	assert.Nil(t, LookupCost("google/gemini-2.0-flash-001"))
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(slowProvider{}, 20*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "slow", p.ModelID())

	var same Provider = slowProvider{}
	assert.Equal(t, same, WithTimeout(same, 0))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("MARUBATSU_LLM_PROVIDER", "openrouter")
	t.Setenv("MARUBATSU_OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("MARUBATSU_OPENROUTER_MODEL", "anthropic/claude-3-haiku")
	t.Setenv("MARUBATSU_LLM_TIMEOUT", "5s")
	t.Setenv("MARUBATSU_OPENAI_MODEL", "")

	cfg := ConfigFromEnv()
	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, "sk-or-test", cfg.OpenRouter.APIKey)
	assert.Equal(t, "anthropic/claude-3-haiku", cfg.OpenRouter.Model)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model, "empty values keep defaults")
	assert.NoError(t, cfg.Validate())
}

func TestResolveFallsBackToDiscovery(t *testing.T) {
	for _, k := range []string{"MARUBATSU_LLM_PROVIDER", "MARUBATSU_ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("OPENROUTER_API_KEY", "sk-or-found")

	cfg, ok := Resolve()
	require.True(t, ok)
	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, "sk-or-found", cfg.OpenRouter.APIKey)

	t.Setenv("OPENROUTER_API_KEY", "")
	_, ok = Resolve()
	assert.False(t, ok)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	cfg := DefaultConfig()
	cfg.Provider = "openrouter"
	cfg.OpenRouter.APIKey = "sk-or-test"
	p, err = NewProvider(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "google/gemini-2.0-flash-001", p.ModelID())

	_, err = NewProvider(context.Background(), Config{Provider: "openai"}, nil)
	assert.Error(t, err)
}
