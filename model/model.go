package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Request captures the normalized completion input produced by engines and
// the synthesis step. Instructions carries the system-level framing; Prompt
// is the request-specific body.
type Request struct {
	Instructions string `json:"instructions,omitempty"`
	Prompt       string `json:"prompt"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completion text returned by a provider.
type Response struct {
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface engines use to drive completion. Complete
// must be callable concurrently without shared state; implementations are
// expected to honor ctx cancellation and deadlines.
type Model interface {
	Complete(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are matched by prompt substring in registration order, falling
// back to a generic echo when nothing matches. An optional error can be
// armed to exercise degradation paths.
type MockModel struct {
	mu      sync.Mutex
	info    Info
	rules   []mockRule
	err     error
	calls   int
}

type mockRule struct {
	match    string
	response string
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{info: Info{Name: name, Provider: "mock"}}
}

// AddResponse registers a canned completion returned when the request prompt
// contains match. Rules are evaluated in registration order.
func (m *MockModel) AddResponse(match, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{match: match, response: response})
}

// Fail arms the mock to return err on every subsequent Complete call; pass
// nil to disarm.
func (m *MockModel) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the number of Complete invocations observed.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Complete implements Model.
func (m *MockModel) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Response{}, m.err
	}
	for _, r := range m.rules {
		if strings.Contains(req.Prompt, r.match) {
			return Response{Text: r.response, FinishReason: "stop"}, nil
		}
	}
	return Response{Text: fmt.Sprintf("Mock response to: %s", req.Prompt), FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
