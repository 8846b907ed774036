package llm

import (
	"context"
	"encoding/json"
	"net/http"
)

// Provider generates one reply per request. When Request.Schema is set the
// reply Content has already been validated against it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single-turn prompt. Explanations always send exactly one
// user message.
type Request struct {
	System   string
	Messages []Message
	// Schema asks for structured JSON output. Nil means free text.
	Schema    *Schema
	MaxTokens int
	// Temperature 0 leaves the provider default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. Name must be kebab-case since OpenAI
// uses it as the response format name.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage
	// Model is what actually served the request, which can differ from
	// ModelID behind a router such as OpenRouter.
	Model string
	// StopReason is one of "end", "max_tokens" or "filtered".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish turns a raw provider reply into a Response. A reply cut off at
// MaxTokens is an error regardless of schema: a half sentence is no use
// as an explanation.
func finish(req Request, content json.RawMessage, model, stop string, usage Usage) (*Response, error) {
	if stop == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

// statusError classifies an HTTP failure reported by a provider SDK.
func statusError(status int, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// resolveModel maps a short name like "claude-haiku" to a model ID.
// Unknown names are taken as IDs.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
