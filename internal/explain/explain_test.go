package explain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/ledger"
	"github.com/abhisek/marubatsu/internal/llm"
)

var stopSign = bank.Question{ID: "4-2", Text: "一時停止の標識があっても安全なら止まらなくてよい。", Answer: false, Section: 4}

func reply(text string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(`{"explanation":"` + text + `"}`)}
}

func TestExplainUsesBankExplanation(t *testing.T) {
	mock := llm.NewMockProvider()
	s := New(mock)

	q := stopSign
	q.Explanation = "停止線の直前で一時停止する。"
	got, err := s.Explain(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, q.Explanation, got)
	assert.Zero(t, mock.CallCount())
}

func TestExplainGeneratesAndCaches(t *testing.T) {
	mock := llm.NewMockProvider(reply("標識がある場所では必ず一時停止する。"))
	s := New(mock)

	got, err := s.Explain(context.Background(), stopSign)
	require.NoError(t, err)
	assert.Equal(t, "標識がある場所では必ず一時停止する。", got)

	again, err := s.Explain(context.Background(), stopSign)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, mock.CallCount())

	req := mock.Calls[0]
	require.NotNil(t, req.Schema)
	assert.Equal(t, "answer-explanation", req.Schema.Name)
	assert.Contains(t, req.Messages[0].Content, stopSign.Text)
	assert.Contains(t, req.Messages[0].Content, "誤り")
}

func TestExplainPersistsToStore(t *testing.T) {
	backend := ledger.NewMemoryBackend()
	mock := llm.NewMockProvider(reply("理由。"))

	first := New(mock, WithStore(backend))
	_, err := first.Explain(context.Background(), stopSign)
	require.NoError(t, err)

	data, found, err := backend.Get(context.Background(), "explain:4-2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "理由。", string(data))

	// A fresh service reads the store instead of calling the provider.
	second := New(mock, WithStore(backend))
	got, err := second.Explain(context.Background(), stopSign)
	require.NoError(t, err)
	assert.Equal(t, "理由。", got)
	assert.Equal(t, 1, mock.CallCount())
}

func TestExplainErrors(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"provider error", llm.MockResponse{Err: &llm.ErrProviderUnavailable{}}},
		{"blank explanation", reply("   ")},
		{"not json", llm.MockResponse{Content: json.RawMessage(`nope`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(llm.NewMockProvider(tt.resp))
			_, err := s.Explain(context.Background(), stopSign)
			assert.Error(t, err)
		})
	}

	s := New(llm.NewMockProvider(reply(" ")))
	_, err := s.Explain(context.Background(), stopSign)
	assert.True(t, errors.Is(err, ErrEmptyExplanation))
}

func TestFillLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	backend := ledger.NewMemoryBackend()
	backend.Err = errors.New("disk full")

	s := New(llm.NewMockProvider(), WithStore(backend), WithLogger(zap.New(core)))
	assert.Empty(t, s.Fill(context.Background(), stopSign))

	entries := logs.FilterMessage("explanation unavailable").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "4-2", entries[0].ContextMap()["question"])
}
