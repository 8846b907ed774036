// Package explain fills in missing answer explanations with an LLM.
package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/llm"
)

// Purpose labels explanation requests in the llm logs.
const Purpose = "explain"

// keyPrefix namespaces explanations in a shared key/value store.
const keyPrefix = "explain:"

// ErrEmptyExplanation is returned when the provider answers with blank text.
var ErrEmptyExplanation = errors.New("explain: empty explanation")

var explanationSchema = &llm.Schema{
	Name:        "answer-explanation",
	Description: "Why a true/false driving licence statement is true or false",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "One or two sentences in Japanese citing the traffic rule",
			},
		},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	},
}

const systemPrompt = `あなたは日本の運転免許学科試験の講師です。
○×問題の正解の理由を、道路交通法や交通の教則に基づいて日本語で一、二文で説明してください。
答えを繰り返すだけの説明は避けてください。`

// Store persists generated explanations. ledger.Backend implementations
// (sqlite, redis) satisfy it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Service generates and caches explanations.
type Service struct {
	provider llm.Provider
	store    Store
	logger   *zap.Logger

	mu    sync.Mutex
	cache map[string]string
}

// Option configures a Service.
type Option func(*Service)

// WithStore persists explanations across runs.
func WithStore(st Store) Option {
	return func(s *Service) { s.store = st }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service backed by provider.
func New(provider llm.Provider, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		logger:   zap.NewNop(),
		cache:    make(map[string]string),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Explain returns an explanation for q. The question's own explanation
// wins; otherwise the memory cache, the store and finally the provider
// are consulted in that order.
func (s *Service) Explain(ctx context.Context, q bank.Question) (string, error) {
	if q.Explanation != "" {
		return q.Explanation, nil
	}

	s.mu.Lock()
	cached, ok := s.cache[q.ID]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	if text, ok := s.fromStore(ctx, q.ID); ok {
		s.remember(q.ID, text)
		return text, nil
	}

	text, err := s.generate(ctx, q)
	if err != nil {
		return "", err
	}
	s.remember(q.ID, text)

	if s.store != nil {
		if err := s.store.Put(ctx, keyPrefix+q.ID, []byte(text)); err != nil {
			s.logger.Warn("explanation not persisted", zap.String("question", q.ID), zap.Error(err))
		}
	}
	return text, nil
}

// Fill is Explain for callers that only want a best effort result: any
// failure is logged and yields "".
func (s *Service) Fill(ctx context.Context, q bank.Question) string {
	text, err := s.Explain(ctx, q)
	if err != nil {
		s.logger.Warn("explanation unavailable", zap.String("question", q.ID), zap.Error(err))
		return ""
	}
	return text
}

func (s *Service) fromStore(ctx context.Context, id string) (string, bool) {
	if s.store == nil {
		return "", false
	}
	data, found, err := s.store.Get(ctx, keyPrefix+id)
	if err != nil {
		s.logger.Debug("explanation store read failed", zap.String("question", id), zap.Error(err))
		return "", false
	}
	if !found || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (s *Service) remember(id, text string) {
	s.mu.Lock()
	s.cache[id] = text
	s.mu.Unlock()
}

func (s *Service) generate(ctx context.Context, q bank.Question) (string, error) {
	verdict := "誤り(×)"
	if q.Answer {
		verdict = "正しい(○)"
	}

	resp, err := s.provider.Generate(llm.WithQuestion(llm.WithPurpose(ctx, Purpose), q.ID), llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("問題: %s\n正解: %s\n正解の理由を説明してください。", q.Text, verdict),
		}},
		Schema:      explanationSchema,
		MaxTokens:   300,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("explain %s: %w", q.ID, err)
	}

	var out struct {
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("explain %s: decode: %w", q.ID, err)
	}
	text := strings.TrimSpace(out.Explanation)
	if text == "" {
		return "", ErrEmptyExplanation
	}
	return text, nil
}
