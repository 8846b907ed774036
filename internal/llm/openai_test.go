package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newOpenAICompatible("test-key", server.URL+"/v1", "gpt-4o-mini")
}

func chatCompletion(content, finish string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o-mini-2024-07-18",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}
}

func openAIFailure(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "server_error", "message": http.StatusText(status)},
		})
	}
}

func TestOpenAIProvider_Reply(t *testing.T) {
	var body map[string]any
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		chatCompletion(`{"explanation":"追い越し禁止。","confidence":80}`, "stop")(w, r)
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "教官として説明する。",
		Messages:  []Message{{Role: RoleUser, Content: "問題: 追い越しできる。"}},
		Schema:    explanationTestSchema(),
		MaxTokens: 128,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Model != "gpt-4o-mini-2024-07-18" || resp.StopReason != "end" {
		t.Errorf("model/stop = %q/%q", resp.Model, resp.StopReason)
	}
	if resp.Usage != (Usage{InputTokens: 40, OutputTokens: 25, TotalTokens: 65}) {
		t.Errorf("usage = %+v", resp.Usage)
	}

	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("sent %d messages, want system + user", len(msgs))
	}
	if first, _ := msgs[0].(map[string]any); first["role"] != "system" {
		t.Errorf("first role = %v, want system", first["role"])
	}
	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Errorf("response_format.type = %v", format["type"])
	}
}

func TestOpenAIProvider_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(error) bool
	}{
		{"rate limited", openAIFailure(http.StatusTooManyRequests), func(err error) bool {
			var rl *ErrRateLimit
			return errors.As(err, &rl)
		}},
		{"server error", openAIFailure(http.StatusBadGateway), func(err error) bool {
			var u *ErrProviderUnavailable
			return errors.As(err, &u)
		}},
		{"truncated", chatCompletion(`{"explanation":"交差点では`, "length"), func(err error) bool {
			var mt *ErrMaxTokensExceeded
			return errors.As(err, &mt)
		}},
		{"schema mismatch", chatCompletion(`{"explanation":"止まる。"}`, "stop"), func(err error) bool {
			var inv *ErrInvalidResponse
			return errors.As(err, &inv)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, tt.handler)
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				Schema:    explanationTestSchema(),
				MaxTokens: 64,
			})
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error %v (%T)", err, err)
			}
		})
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{}); err == nil {
		t.Error("expected error without API key")
	}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: "https://example.test/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4o" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
}
